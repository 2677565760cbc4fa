package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/receipt-ocr/internal/format"
	"github.com/zombor/receipt-ocr/internal/preprocess"
	"github.com/zombor/receipt-ocr/internal/receipt"
	"github.com/zombor/receipt-ocr/internal/scanning"
	"github.com/zombor/receipt-ocr/internal/tesseract"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

// engineConfig selects and configures the recognition engine
type engineConfig struct {
	engine        string
	tesseractPath string
	tessdataDir   string
	lang          string
	workers       int
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	// A missing .env is fine, flags and the environment still apply
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "error: loading .env: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var cfg engineConfig

	rootFlags := ff.NewFlagSet("receipt-ocr")
	logLevel := rootFlags.StringLong("log-level", "info", "Log level: debug, info, warn or error")
	rootFlags.StringVar(&cfg.engine, 0, "engine", "gosseract", "Recognition engine: 'gosseract' or 'cli'")
	rootFlags.StringVar(&cfg.tesseractPath, 0, "tesseract-path", tesseract.DefaultBinary, "Tesseract executable for the cli engine")
	rootFlags.StringVar(&cfg.tessdataDir, 0, "tessdata-dir", "", "Directory holding the tesseract language data")
	rootFlags.StringVar(&cfg.lang, 0, "lang", scanning.DefaultLanguage, "Recognition language")
	rootFlags.IntVar(&cfg.workers, 0, "workers", 1, "Variants recognized in parallel (1 is sequential)")
	_ = rootFlags.BoolLong("version", "Show version information")

	rootCmd := &ff.Command{
		Name:      "receipt-ocr",
		Usage:     "receipt-ocr [FLAGS] <SUBCOMMAND>",
		ShortHelp: "extract structured data from receipt photos",
		Flags:     rootFlags,
	}

	serveFlags := ff.NewFlagSet("serve").SetParent(rootFlags)
	var (
		port        = serveFlags.IntLong("port", 8080, "HTTP server port")
		dbPath      = serveFlags.StringLong("db", "receipt-ocr.db", "Database file path")
		uploadsPath = serveFlags.StringLong("uploads", "./uploads", "Upload directory path")
		maxUploadMB = serveFlags.IntLong("max-upload-mb", 20, "Largest accepted upload in megabytes")
		authUser    = serveFlags.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass    = serveFlags.StringLong("auth-pass", "", "Basic auth password (optional)")
	)
	serveCmd := &ff.Command{
		Name:      "serve",
		Usage:     "receipt-ocr serve [FLAGS]",
		ShortHelp: "run the upload web interface and JSON API",
		Flags:     serveFlags,
		Exec: func(ctx context.Context, _ []string) error {
			return serve(ctx, cfg, serveConfig{
				port:          *port,
				dbPath:        *dbPath,
				uploadsPath:   *uploadsPath,
				maxUploadSize: int64(*maxUploadMB) << 20,
				auth:          receipt.BasicAuth{Username: *authUser, Password: *authPass},
			})
		},
	}

	scanFlags := ff.NewFlagSet("scan").SetParent(rootFlags)
	pretty := scanFlags.BoolLong("pretty", "Indent the JSON output")
	scanCmd := &ff.Command{
		Name:      "scan",
		Usage:     "receipt-ocr scan [FLAGS] <IMAGE>...",
		ShortHelp: "scan image files and print one JSON record per file",
		Flags:     scanFlags,
		Exec: func(ctx context.Context, paths []string) error {
			return scanFiles(ctx, cfg, paths, *pretty, stdout)
		},
	}

	rootCmd.Subcommands = []*ff.Command{serveCmd, scanCmd}

	if err := rootCmd.Parse(args, ff.WithEnvVarPrefix("RECEIPT_OCR")); err != nil {
		selected := rootCmd.GetSelected()
		if selected == nil {
			selected = rootCmd
		}
		fmt.Fprintf(stderr, "%s\n", ffhelp.Command(selected))
		if errors.Is(err, ff.ErrHelp) {
			return nil
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return err
	}

	if err := setupLogging(*logLevel, stderr); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return err
	}

	if err := rootCmd.Run(ctx); err != nil {
		if errors.Is(err, ff.ErrNoExec) {
			fmt.Fprintf(stderr, "%s\n", ffhelp.Command(rootCmd))
		}
		slog.Error("Command failed", "error", err)
		return err
	}
	return nil
}

func setupLogging(level string, w io.Writer) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})))
	return nil
}

// newRecognizer builds the configured engine. The executable path is handed
// to the engine here and nowhere else.
func newRecognizer(cfg engineConfig) (scanning.Recognizer, error) {
	switch cfg.engine {
	case "gosseract":
		slog.Info("Initializing gosseract engine...", "tessdata", cfg.tessdataDir)
		return tesseract.NewClient(cfg.tessdataDir), nil
	case "cli":
		slog.Info("Initializing tesseract executable...", "path", cfg.tesseractPath, "tessdata", cfg.tessdataDir)
		return tesseract.NewCLI(cfg.tesseractPath, tesseract.WithTessdataDir(cfg.tessdataDir)), nil
	default:
		return nil, fmt.Errorf("invalid engine %q, valid: gosseract or cli", cfg.engine)
	}
}

func newPipeline(cfg engineConfig) (*scanning.Pipeline, error) {
	rec, err := newRecognizer(cfg)
	if err != nil {
		return nil, err
	}
	return scanning.NewPipeline(preprocess.New(), rec,
		scanning.WithProfiles(scanning.DefaultProfiles(cfg.lang)...),
		scanning.WithWorkers(cfg.workers),
	), nil
}

type serveConfig struct {
	port          int
	dbPath        string
	uploadsPath   string
	maxUploadSize int64
	auth          receipt.BasicAuth
}

func serve(ctx context.Context, cfg engineConfig, sc serveConfig) error {
	slog.Info("Initializing database...", "path", sc.dbPath)
	db, err := receipt.NewBoltDB(sc.dbPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer db.Close()

	pipeline, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	slog.Info("Initializing storage...", "path", sc.uploadsPath)
	store, err := receipt.NewLocalStorage(sc.uploadsPath)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	service := receipt.NewService(db, pipeline, store)
	service.SetMaxUploadSize(sc.maxUploadSize)

	server := receipt.NewServer(service, sc.auth)
	if sc.auth.Username != "" || sc.auth.Password != "" {
		slog.Info("Basic auth enabled", "user", sc.auth.Username)
	}

	addr := fmt.Sprintf(":%d", sc.port)
	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))
	return server.Start(ctx, addr)
}

func scanFiles(ctx context.Context, cfg engineConfig, paths []string, pretty bool, out io.Writer) error {
	if len(paths) == 0 {
		return errors.New("no image paths given")
	}

	pipeline, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	enc := json.NewEncoder(out)
	if pretty {
		enc.SetIndent("", "  ")
	}

	var failed int
	for _, path := range paths {
		record, err := pipeline.ScanFile(ctx, path)
		if err != nil {
			slog.Error("Failed to scan receipt", "path", path, "error", err)
			failed++
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if err := enc.Encode(format.Enrich(record)); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(paths))
	}
	return nil
}
