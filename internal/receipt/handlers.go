package receipt

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Messages shown to users for rejected uploads
const (
	msgNoFilePart   = "No file part in request"
	msgNoFileChosen = "No file selected"
	msgNoFile       = "No file provided"
	msgEmptyName    = "Empty filename"
	msgUnsupported  = "Unsupported file type"
	msgTooLarge     = "File is too large"
)

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}

// uploadError is a rejected upload with the status and message to show
type uploadError struct {
	status  int
	message string
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}

// readUpload pulls the "file" part out of a multipart request
func readUpload(r *http.Request, missingFile string) (*multipart.FileHeader, []byte, *uploadError) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		if isBodyTooLarge(err) {
			return nil, nil, &uploadError{http.StatusRequestEntityTooLarge, msgTooLarge}
		}
		slog.Error("Error parsing multipart form", "error", err)
		return nil, nil, &uploadError{http.StatusBadRequest, missingFile}
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		// A file input left empty arrives as a plain form value
		if errors.Is(err, http.ErrMissingFile) && r.MultipartForm != nil {
			if _, ok := r.MultipartForm.Value["file"]; ok {
				return nil, nil, &uploadError{http.StatusBadRequest, msgNoFileChosen}
			}
		}
		return nil, nil, &uploadError{http.StatusBadRequest, missingFile}
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		if isBodyTooLarge(err) {
			return nil, nil, &uploadError{http.StatusRequestEntityTooLarge, msgTooLarge}
		}
		return nil, nil, &uploadError{http.StatusInternalServerError, "Error reading file"}
	}
	return header, data, nil
}

// classifyUploadError maps service errors onto a status and message
func classifyUploadError(err error, emptyName string) *uploadError {
	switch {
	case errors.Is(err, ErrEmptyFilename):
		return &uploadError{http.StatusBadRequest, emptyName}
	case errors.Is(err, ErrNoFile):
		return &uploadError{http.StatusBadRequest, msgNoFile}
	case errors.Is(err, ErrUnsupportedType):
		return &uploadError{http.StatusBadRequest, msgUnsupported}
	case errors.Is(err, ErrFileTooLarge):
		return &uploadError{http.StatusRequestEntityTooLarge, msgTooLarge}
	default:
		return &uploadError{http.StatusInternalServerError, err.Error()}
	}
}

// handleIndex renders the upload form
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		corsError(w, "Not found", http.StatusNotFound)
		return
	}
	s.renderUploadPage(w, http.StatusOK, "")
}

func (s *Server) renderUploadPage(w http.ResponseWriter, status int, message string) {
	scans, err := s.service.ListScans()
	if err != nil {
		slog.Warn("Could not list recent scans", "error", err)
		scans = nil
	}
	if len(scans) > recentScans {
		scans = scans[:recentScans]
	}
	render(w, status, "upload.html", uploadPage{Error: message, Recent: scans})
}

// handleUploadForm accepts the HTML form and renders the result page
func (s *Server) handleUploadForm(w http.ResponseWriter, r *http.Request) {
	header, data, uerr := readUpload(r, msgNoFilePart)
	if uerr != nil {
		s.renderUploadPage(w, uerr.status, uerr.message)
		return
	}

	scan, err := s.service.ProcessUpload(r.Context(), header.Filename, data, header.Header.Get("Content-Type"))
	if err != nil {
		slog.Error("Error processing upload", "filename", header.Filename, "error", err)
		uerr := classifyUploadError(err, msgNoFileChosen)
		if uerr.status == http.StatusInternalServerError {
			uerr.message = fmt.Sprintf("OCR failed: %v", err)
		}
		s.renderUploadPage(w, uerr.status, uerr.message)
		return
	}

	page, err := newResultPage(scan)
	if err != nil {
		slog.Error("Error building result page", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	render(w, http.StatusOK, "result.html", page)
}

// handleAPIOCR accepts an upload and returns the enriched record as JSON
func (s *Server) handleAPIOCR(w http.ResponseWriter, r *http.Request) {
	header, data, uerr := readUpload(r, msgNoFile)
	if uerr != nil {
		if uerr.message == msgNoFileChosen {
			uerr.message = msgEmptyName
		}
		writeJSONError(w, uerr.status, uerr.message)
		return
	}

	scan, err := s.service.ProcessUpload(r.Context(), header.Filename, data, header.Header.Get("Content-Type"))
	if err != nil {
		slog.Error("Error processing upload", "filename", header.Filename, "error", err)
		uerr := classifyUploadError(err, msgEmptyName)
		writeJSONError(w, uerr.status, uerr.message)
		return
	}

	w.Header().Set("Location", "/api/scans/"+scan.ID)
	writeJSON(w, http.StatusOK, scan.Result)
}

// handleUploadedFile serves a stored upload
func (s *Server) handleUploadedFile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("filename")
	data, contentType, err := s.service.GetUploadFile(name)
	if err != nil {
		corsError(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleListScans returns the scan history
func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	scans, err := s.service.ListScans()
	if err != nil {
		slog.Error("Error listing scans", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Ensure we always return an array, not nil
	if scans == nil {
		scans = []*Scan{}
	}
	writeJSON(w, http.StatusOK, scans)
}

// handleGetScan returns a single scan
func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	scan, err := s.service.GetScan(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, ErrScanNotFound) {
			corsError(w, "Scan not found", http.StatusNotFound)
			return
		}
		slog.Error("Error getting scan", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, scan)
}

// handleDeleteScan deletes a scan
func (s *Server) handleDeleteScan(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteScan(r.PathValue("id")); err != nil {
		if errors.Is(err, ErrScanNotFound) {
			corsError(w, "Scan not found", http.StatusNotFound)
			return
		}
		slog.Error("Error deleting scan", "error", err)
		corsError(w, "Error deleting scan", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleExport streams the scan history as a spreadsheet
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.ExportScans()
	if err != nil {
		slog.Error("Error exporting scans", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="scans.xlsx"`)
	w.Write(data)
}

// handleStaticCSS serves the stylesheet
func (s *Server) handleStaticCSS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css")
	w.Write(appCSS)
}
