// mailbox-stats inspects an archive without calling any model: it reports
// the detected owner and the contacts and threads a full run would analyze.
// Useful for checking owner detection and caps before spending API calls.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/clearsignals/clearsignals/signals"
	"github.com/clearsignals/clearsignals/signals/mailbox"
)

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if cfg.Verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := mailbox.Open(cfg.InPath, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	raw, err := source.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	var msgs []signals.Message
	for _, sm := range raw {
		if m, ok := signals.Normalize(sm); ok {
			msgs = append(msgs, m)
		}
	}
	if len(msgs) == 0 {
		fmt.Fprintln(os.Stderr, "no usable messages found")
		os.Exit(1)
	}

	owner := cfg.Owner
	if owner == "" {
		owner = signals.IdentifyOwner(msgs)
	}

	var contacts []signals.Contact
	for _, cm := range signals.GroupByContact(msgs, owner) {
		if c, ok := signals.BuildContact(cm, cfg.Limits()); ok {
			contacts = append(contacts, c)
		}
	}
	contacts = signals.SelectContacts(contacts, cfg.Limits())

	fmt.Printf("Messages:  %d extracted, %d kept\n", len(raw), len(msgs))
	fmt.Printf("Owner:     %s\n", owner)
	fmt.Printf("Contacts:  %d with analyzable threads\n\n", len(contacts))

	fmt.Printf("%-40s  %-8s  %-7s  %s\n", "CONTACT", "MESSAGES", "THREADS", "NEWEST THREAD")
	for _, c := range contacts {
		newest := "unknown"
		if len(c.Threads) > 0 && c.Threads[0].EndedAt != nil {
			newest = c.Threads[0].EndedAt.Format("2006-01-02")
		}
		fmt.Printf("%-40s  %-8d  %-7d  %s\n", c.Address, c.MessageCount, len(c.Threads), newest)
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.InPath, "in", cfg.InPath, "Path to an .mbox file, a directory of .mbox files, or a directory of .eml files")
	fs.StringVar(&cfg.Owner, "owner", cfg.Owner, "Mailbox owner address (default: detected from sender frequency)")
	fs.IntVar(&cfg.MaxContacts, "max-contacts", cfg.MaxContacts, "Max contacts to list (0 = all)")
	fs.IntVar(&cfg.MaxThreadsPerContact, "max-threads", cfg.MaxThreadsPerContact, "Max threads per contact (0 = all)")
	fs.IntVar(&cfg.MaxMessagesPerThread, "max-messages", cfg.MaxMessagesPerThread, "Max messages per thread, keeping the oldest (0 = all)")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Verbose logging")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if fs.NArg() > 0 {
		return Config{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return cfg, nil
}
