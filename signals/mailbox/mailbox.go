// Package mailbox provides message sources for local mail archives. Each
// source implements signals.Source and skips unparseable messages rather
// than failing the whole load.
package mailbox

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/clearsignals/clearsignals/signals"
)

// skipFolders are folder name fragments excluded from extraction. Matching
// is case-insensitive substring, so "Deleted Items" and "junk-email" both
// match.
var skipFolders = []string{
	"calendar",
	"contacts",
	"tasks",
	"notes",
	"journal",
	"junk",
	"deleted",
}

// SkipFolder reports whether a folder holds non-conversation items.
func SkipFolder(name string) bool {
	lower := strings.ToLower(name)
	for _, s := range skipFolders {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// Open picks a source for path: an .mbox file or a directory. Directories
// holding any .mbox files load as mbox archives, otherwise as loose .eml
// files.
func Open(path string, logger *log.Logger) (signals.Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("Open: %w", err)
	}

	if !info.IsDir() {
		if strings.EqualFold(filepath.Ext(path), ".mbox") {
			return NewMboxSource(path, logger), nil
		}
		return nil, fmt.Errorf("Open: %s: not an .mbox file or directory", path)
	}

	hasMbox := false
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(p), ".mbox") {
			hasMbox = true
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("Open: %w", err)
	}
	if hasMbox {
		return NewMboxSource(path, logger), nil
	}
	return NewEMLSource(path, logger), nil
}
