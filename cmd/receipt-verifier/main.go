package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/dagmawib/receipt-verifier/internal/api"
	"github.com/dagmawib/receipt-verifier/internal/classify"
	"github.com/dagmawib/receipt-verifier/internal/verify"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("receipt-verifier")
	var (
		port            = fs.IntLong("port", 8080, "HTTP server port")
		dbPath          = fs.StringLong("db", "receipt-verifier.db", "Database file path")
		adminKey        = fs.StringLong("admin-key", "", "Admin key for key management and stats endpoints")
		geminiKey       = fs.StringLong("gemini-key", "", "Google Gemini API key for image classification (or set GEMINI_API_KEY env var)")
		geminiModel     = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		fetchTimeout    = fs.DurationLong("fetch-timeout", verify.DefaultFetchTimeout, "Timeout for one upstream receipt fetch")
		browserSessions = fs.IntLong("browser-sessions", verify.DefaultBrowserSessions, "Max concurrent browser capture sessions")
		upstreamRPS     = fs.Float64Long("upstream-rps", 0, "Requests per second per upstream (0 = unlimited)")
		showVersion     = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPT_VERIFIER"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	slog.Info("Initializing database...")
	db, err := api.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// The classifier is an optional capability: without a key the
	// service still verifies manually-entered references.
	var classifier classify.Classifier
	apiKey := *geminiKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey != "" {
		slog.Info("Initializing Gemini classifier...", "model", *geminiModel)
		classifier, err = classify.NewGemini(apiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
		defer classifier.Close()
	} else {
		slog.Info("No Gemini API key configured; image classification disabled")
	}

	cfg := verify.DefaultConfig()
	cfg.FetchTimeout = *fetchTimeout
	cfg.BrowserSessions = *browserSessions
	cfg.UpstreamRPS = *upstreamRPS
	verifier := verify.New(cfg)

	service := api.NewService(db, verifier, classifier)

	if *adminKey == "" {
		slog.Warn("No admin key configured; key management endpoints are disabled")
	}
	server := api.NewServer(service, *adminKey)

	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "fetch_timeout", (*fetchTimeout).String())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
