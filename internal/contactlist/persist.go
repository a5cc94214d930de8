package contactlist

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/smileynet/addressbook/internal/codec"
)

// ErrIO indicates the contacts file could not be read or written. Errors
// returned by Save and Load wrap it together with the underlying cause.
var ErrIO = errors.New("contactlist: io failure")

func (l *List) resolve(path string) string {
	if path == "" {
		return l.path
	}
	return path
}

// Save writes every non-empty contact to path ("" means the list's default
// path), replacing the file.
func (l *List) Save(path string) error {
	p := l.resolve(path)

	var buf bytes.Buffer
	if err := codec.Encode(&buf, l.All()); err != nil {
		return fmt.Errorf("%w: encoding %s: %w", ErrIO, p, err)
	}

	if dir := filepath.Dir(p); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: creating directory: %w", ErrIO, err)
		}
	}
	if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %w", ErrIO, p, err)
	}

	l.log.Debug("contacts saved", zap.String("path", p), zap.Int("count", l.count))
	return nil
}

// Load replaces the list with the records read from path ("" means the list's
// default path). If the file cannot be opened or read the list is left
// untouched and observers are not notified. Malformed lines are skipped.
// Observers are notified once, at the end.
func (l *List) Load(path string) error {
	p := l.resolve(path)

	f, err := os.Open(p)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %w", ErrIO, p, err)
	}
	defer f.Close()
	if fi, err := f.Stat(); err == nil && fi.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrIO, p)
	}
	return l.load(f, p)
}

func (l *List) load(r io.Reader, p string) error {
	records, st, err := codec.DecodeAll(r)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %w", ErrIO, p, err)
	}

	l.Clear()
	// Each insert re-sorts, so a load costs O(n²·log n).
	for _, c := range records {
		l.insert(c)
	}
	l.log.Debug("contacts loaded",
		zap.String("path", p),
		zap.Int("lines", st.Lines),
		zap.Int("accepted", st.Accepted),
		zap.Int("skipped", st.Skipped))
	l.notify()
	return nil
}
