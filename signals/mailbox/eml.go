package mailbox

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jaytaylor/html2text"
	"github.com/mnako/letters"

	"github.com/clearsignals/clearsignals/signals"
)

// EMLSource walks a directory tree of .eml files, one message per file.
// The folder name of a message is its path relative to the root, so an
// exported folder hierarchy carries through.
type EMLSource struct {
	root   string
	logger *log.Logger
}

func NewEMLSource(root string, logger *log.Logger) *EMLSource {
	if logger == nil {
		logger = log.Default()
	}
	return &EMLSource{root: root, logger: logger}
}

func (s *EMLSource) Load(ctx context.Context) ([]signals.SourceMessage, error) {
	var msgs []signals.SourceMessage

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}

		rel, rerr := filepath.Rel(s.root, path)
		if rerr != nil {
			rel = path
		}

		if d.IsDir() {
			if path != s.root && SkipFolder(d.Name()) {
				s.logger.Info("skipping folder", "folder", rel)
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".eml") {
			return nil
		}

		folder := filepath.ToSlash(filepath.Dir(rel))
		if folder == "." {
			folder = ""
		}
		msg, perr := s.parseFile(path, folder)
		if perr != nil {
			s.logger.Warn("skipping unparseable message", "file", rel, "err", perr)
			return nil
		}
		msgs = append(msgs, msg)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("EMLSource.Load: %w", err)
	}

	s.logger.Info("loaded eml directory", "root", s.root, "messages", len(msgs))
	return msgs, nil
}

func (s *EMLSource) parseFile(path, folder string) (signals.SourceMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return signals.SourceMessage{}, err
	}
	defer f.Close()

	email, err := letters.ParseEmail(f)
	if err != nil {
		return signals.SourceMessage{}, err
	}

	var senderName, senderAddr string
	if len(email.Headers.From) > 0 && email.Headers.From[0] != nil {
		senderName = email.Headers.From[0].Name
		senderAddr = email.Headers.From[0].Address
	}

	var recipients []string
	for _, a := range email.Headers.To {
		if a != nil {
			recipients = append(recipients, a.Address)
		}
	}
	for _, a := range email.Headers.Cc {
		if a != nil {
			recipients = append(recipients, a.Address)
		}
	}

	var sentAt *time.Time
	if !email.Headers.Date.IsZero() {
		utc := email.Headers.Date.UTC()
		sentAt = &utc
	}

	body := email.Text
	if body == "" && email.HTML != "" {
		if t, err := html2text.FromString(email.HTML, html2text.Options{OmitLinks: true, TextOnly: true}); err == nil {
			body = t
		}
	}

	return signals.SourceMessage{
		SenderName:    senderName,
		SenderAddress: senderAddr,
		Recipients:    recipients,
		Subject:       strings.TrimSpace(email.Headers.Subject),
		Body:          strings.TrimSpace(body),
		SentAt:        sentAt,
		Folder:        folder,
	}, nil
}
