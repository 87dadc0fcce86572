package mailbox

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jaytaylor/html2text"

	"github.com/clearsignals/clearsignals/signals"
)

// MboxSource reads messages from a single .mbox file or every .mbox file
// under a directory. The folder name of each message is the file's base
// name without extension.
type MboxSource struct {
	path   string
	logger *log.Logger
}

func NewMboxSource(path string, logger *log.Logger) *MboxSource {
	if logger == nil {
		logger = log.Default()
	}
	return &MboxSource{path: path, logger: logger}
}

func (s *MboxSource) Load(ctx context.Context) ([]signals.SourceMessage, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("MboxSource.Load: %w", err)
	}

	files := []string{s.path}
	if info.IsDir() {
		files = nil
		err := filepath.WalkDir(s.path, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != s.path && SkipFolder(d.Name()) {
					s.logger.Info("skipping folder", "folder", d.Name())
					return filepath.SkipDir
				}
				return nil
			}
			if strings.EqualFold(filepath.Ext(path), ".mbox") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("MboxSource.Load: %w", err)
		}
	}

	var msgs []signals.SourceMessage
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("MboxSource.Load: %w", err)
		}
		folder := strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
		if SkipFolder(folder) {
			s.logger.Info("skipping folder", "folder", folder)
			continue
		}
		n, err := s.loadFile(f, folder, &msgs)
		if err != nil {
			return nil, fmt.Errorf("MboxSource.Load: %w", err)
		}
		s.logger.Info("loaded mbox file", "file", f, "messages", n)
	}
	return msgs, nil
}

func (s *MboxSource) loadFile(path, folder string, out *[]signals.SourceMessage) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n := 0
	flush := func(raw string) {
		if raw == "" {
			return
		}
		msg, err := parseRFC822(raw, folder)
		if err != nil {
			s.logger.Warn("skipping unparseable message", "file", path, "err", err)
			return
		}
		*out = append(*out, msg)
		n++
	}

	var buf bytes.Buffer
	r := bufio.NewReader(f)
	in := false
	for {
		line, err := r.ReadString('\n')
		if err == io.EOF {
			if in {
				flush(buf.String())
			}
			break
		}
		if err != nil {
			return n, err
		}
		if strings.HasPrefix(line, "From ") {
			if in {
				flush(buf.String())
				buf.Reset()
			}
			in = true
			continue
		}
		if in {
			buf.WriteString(line)
		}
	}
	return n, nil
}

var wordDecoder = mime.WordDecoder{}

func decodeHeader(v string) string {
	if d, err := wordDecoder.DecodeHeader(v); err == nil {
		return d
	}
	return v
}

// parseRFC822 turns one raw RFC 822 message into a SourceMessage, pulling
// a text body out of whatever MIME structure the message has.
func parseRFC822(raw, folder string) (signals.SourceMessage, error) {
	msg, err := mail.ReadMessage(strings.NewReader(raw))
	if err != nil {
		return signals.SourceMessage{}, err
	}
	h := msg.Header

	var sentAt *time.Time
	if d, err := mail.ParseDate(h.Get("Date")); err == nil {
		utc := d.UTC()
		sentAt = &utc
	}

	senderName, senderAddr := splitAddressHeader(h.Get("From"))

	var recipients []string
	for _, key := range []string{"To", "Cc"} {
		if addrs, err := h.AddressList(key); err == nil {
			for _, a := range addrs {
				recipients = append(recipients, a.Address)
			}
		} else if v := h.Get(key); v != "" {
			for _, part := range strings.Split(v, ",") {
				if _, addr := splitAddressHeader(part); addr != "" {
					recipients = append(recipients, addr)
				}
			}
		}
	}

	body := extractBody(msg)

	return signals.SourceMessage{
		SenderName:    senderName,
		SenderAddress: senderAddr,
		Recipients:    recipients,
		Subject:       strings.TrimSpace(decodeHeader(h.Get("Subject"))),
		Body:          strings.TrimSpace(body),
		SentAt:        sentAt,
		Folder:        folder,
	}, nil
}

func splitAddressHeader(v string) (name, addr string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", ""
	}
	if a, err := mail.ParseAddress(decodeHeader(v)); err == nil {
		return strings.TrimSpace(a.Name), a.Address
	}
	return "", v
}

// extractBody prefers text/plain parts, then converted text/html, then the
// raw body.
func extractBody(msg *mail.Message) string {
	mt, params, _ := mime.ParseMediaType(msg.Header.Get("Content-Type"))

	if strings.HasPrefix(mt, "multipart/") {
		mr := multipart.NewReader(msg.Body, params["boundary"])
		var plain, html string
		for {
			p, err := mr.NextPart()
			if err != nil {
				break
			}
			pt, _, _ := mime.ParseMediaType(p.Header.Get("Content-Type"))
			b, _ := io.ReadAll(decodeTransfer(p, p.Header.Get("Content-Transfer-Encoding")))
			switch {
			case strings.HasPrefix(pt, "text/plain") && plain == "":
				plain = string(b)
			case strings.HasPrefix(pt, "text/html") && html == "":
				if t, err := html2text.FromString(string(b), html2text.Options{OmitLinks: true, TextOnly: true}); err == nil {
					html = t
				}
			}
			p.Close()
		}
		if plain != "" {
			return plain
		}
		return html
	}

	b, err := io.ReadAll(decodeTransfer(msg.Body, msg.Header.Get("Content-Transfer-Encoding")))
	if err != nil {
		return ""
	}
	if strings.Contains(strings.ToLower(mt), "html") {
		t, _ := html2text.FromString(string(b), html2text.Options{OmitLinks: true, TextOnly: true})
		return t
	}
	return string(b)
}

func decodeTransfer(r io.Reader, encoding string) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	default:
		return r
	}
}
