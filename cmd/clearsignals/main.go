package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/clearsignals/clearsignals/signals"
	"github.com/clearsignals/clearsignals/signals/mailbox"
)

func main() {
	_ = godotenv.Load()

	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENROUTER_API_KEY")
	}
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "missing OPENROUTER_API_KEY (or pass -api-key)")
		os.Exit(2)
	}

	outDir := cfg.OutDir
	if outDir == "" {
		abs, err := filepath.Abs(cfg.InPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(2)
		}
		outDir = filepath.Dir(abs)
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			outDir = abs
		}
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if cfg.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := mailbox.Open(cfg.InPath, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	analyzer, err := signals.NewOracleAnalyzer(signals.OracleConfig{
		APIKey:  apiKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	logger.Info("starting run", "in", cfg.InPath, "out", outDir, "model", cfg.Model)
	start := time.Now()

	report, err := signals.Run(ctx, signals.RunConfig{
		Source:         source,
		Analyzer:       analyzer,
		Limits:         cfg.Limits(),
		Owner:          cfg.Owner,
		RateLimitDelay: cfg.RateLimitDelay,
		OutDir:         outDir,
		Pretty:         cfg.Pretty,
		Logger:         logger,
	})
	if err != nil {
		if errors.Is(err, signals.ErrNoMessages) || errors.Is(err, signals.ErrNoContacts) {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		logger.Error("run failed", "err", err)
		os.Exit(1)
	}

	printSummary(report, time.Since(start))
}

func printSummary(r signals.Report, elapsed time.Duration) {
	fmt.Println()
	fmt.Println("=== ClearSignals run complete ===")
	fmt.Printf("Owner:            %s\n", orNA(r.Owner))
	fmt.Printf("Messages:         %d extracted, %d kept\n", r.MessagesExtracted, r.MessagesKept)
	fmt.Printf("Contacts:         %d selected\n", r.ContactsSelected)
	fmt.Printf("Threads:          %d analyzed, %d failed\n", r.ThreadsAnalyzed, r.ThreadsFailed)
	fmt.Printf("Profiles:         %d written, %d signals total\n", r.ProfilesWritten, r.TotalSignals)
	fmt.Printf("Elapsed:          %s\n", elapsed.Round(time.Second))
	fmt.Println()

	fmt.Printf("%-18s  %-10s  %-8s  %-7s  %s\n", "CONTACT", "HEALTH", "TREND", "THREADS", "AVG INTENT")
	for _, o := range r.Outcomes {
		if o.Profile == nil {
			fmt.Printf("%-18s  %-10s  %-8s  %-7d  %s\n",
				o.Raw.ContactName+" (unassessed)", "N/A", "N/A", len(o.Raw.Threads), "N/A")
			continue
		}
		agg := o.Profile.Aggregate
		fmt.Printf("%-18s  %-10s  %-8s  %-7d  %.1f\n",
			o.Profile.Contact.HashID, agg.RelationshipHealth, agg.TrendDirection, agg.TotalThreads, agg.AvgIntent)
	}
	fmt.Println()

	fmt.Printf("Profiles:  %s\n", r.Artifacts.Profiles)
	fmt.Printf("Raw:       %s  (contains PII, keep local)\n", r.Artifacts.Raw)
	fmt.Printf("Dashboard: %s\n", r.Artifacts.Dashboard)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)

	if m := os.Getenv("OPENROUTER_MODEL_ID"); m != "" {
		cfg.Model = m
	}

	fs.StringVar(&cfg.InPath, "in", cfg.InPath, "Path to an .mbox file, a directory of .mbox files, or a directory of .eml files")
	fs.StringVar(&cfg.OutDir, "out", cfg.OutDir, "Output directory for artifacts (default: directory of -in)")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "Model ID to use via the OpenRouter-compatible API")
	fs.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "Base URL of the OpenAI-compatible API")
	fs.StringVar(&cfg.APIKey, "api-key", cfg.APIKey, "API key (default: OPENROUTER_API_KEY, then OPENAI_API_KEY)")
	fs.StringVar(&cfg.Owner, "owner", cfg.Owner, "Mailbox owner address (default: detected from sender frequency)")
	fs.IntVar(&cfg.MaxContacts, "max-contacts", cfg.MaxContacts, "Max contacts to analyze (0 = all)")
	fs.IntVar(&cfg.MaxThreadsPerContact, "max-threads", cfg.MaxThreadsPerContact, "Max threads per contact (0 = all)")
	fs.IntVar(&cfg.MaxMessagesPerThread, "max-messages", cfg.MaxMessagesPerThread, "Max messages per thread, keeping the oldest (0 = all)")
	fs.DurationVar(&cfg.RateLimitDelay, "rate-delay", cfg.RateLimitDelay, "Delay after every model call")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-call model timeout")
	fs.BoolVar(&cfg.Pretty, "pretty", cfg.Pretty, "Pretty-print artifact JSON")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Verbose logging")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if fs.NArg() > 0 {
		return Config{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return cfg, nil
}
