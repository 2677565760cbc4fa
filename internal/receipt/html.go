package receipt

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/zombor/receipt-ocr/internal/scanning"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed templates/app.css
var appCSS []byte

// recentScans is how many history entries the upload page lists
const recentScans = 10

var pages = template.Must(template.New("").Funcs(template.FuncMap{
	"val": deref,
}).ParseFS(templatesFS, "templates/*.html"))

type uploadPage struct {
	Error  string
	Recent []*Scan
}

type resultPage struct {
	Scan   *Scan
	Record *scanning.Receipt
	JSON   string
}

func newResultPage(scan *Scan) (resultPage, error) {
	data, err := json.MarshalIndent(scan.Result, "", "  ")
	if err != nil {
		return resultPage{}, err
	}
	return resultPage{Scan: scan, Record: scan.Result, JSON: string(data)}, nil
}

// render executes a page into a buffer first so a template failure
// never leaves a half-written response
func render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("Error rendering page", "template", name, "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
