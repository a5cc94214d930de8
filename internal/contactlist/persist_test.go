package contactlist

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/smileynet/addressbook/internal/contact"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	// Given a populated list saved to disk
	path := filepath.Join(t.TempDir(), "contacts.csv")
	src := newList(dave, carol, bob, alice)
	if err := src.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// When a fresh list loads it
	dst := New()
	n := watch(dst)
	if err := dst.Load(path); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Then it holds the same records and notified once
	if diff := cmp.Diff(src.All(), dst.All()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if n.n != 1 {
		t.Errorf("Load notified %d times, want 1", n.n)
	}
	assertSorted(t, dst)
}

func TestSave_FileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book", "contacts.csv")
	l := newList(bob, alice)
	l.Insert(contact.Contact{})

	if err := l.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "alice,4445556666,alice@gmail.com\nBob,1112223333,\n"
	if string(data) != want {
		t.Errorf("file =\n%q\nwant\n%q", data, want)
	}
}

func TestLoad_SkipsSingleFieldLine(t *testing.T) {
	// Given a file with a one-field line and a full line
	path := filepath.Join(t.TempDir(), "contacts.csv")
	content := "OnlyOneField\nDana,5551234567,dana@yahoo.com\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	// When it is loaded
	l := New()
	if err := l.Load(path); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Then only Dana is present, with all three fields
	want := []contact.Contact{{Name: "Dana", Phone: "5551234567", Email: "dana@yahoo.com"}}
	if diff := cmp.Diff(want, l.All()); diff != "" {
		t.Errorf("All() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_ReplacesExistingContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.csv")
	if err := os.WriteFile(path, []byte("dave,5551234567\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	l := newList(alice, bob)
	if err := l.Load(path); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if diff := cmp.Diff([]contact.Contact{dave}, l.All()); diff != "" {
		t.Errorf("All() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_MissingFileLeavesStateUntouched(t *testing.T) {
	// Given a populated list
	l := newList(alice, bob)
	n := watch(l)

	// When loading a file that does not exist
	err := l.Load(filepath.Join(t.TempDir(), "missing.csv"))

	// Then an io error is returned and nothing changed
	if !errors.Is(err, ErrIO) {
		t.Errorf("Load() error = %v, want ErrIO", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Load() error = %v, want fs.ErrNotExist in chain", err)
	}
	if diff := cmp.Diff([]contact.Contact{alice, bob}, l.All()); diff != "" {
		t.Errorf("state changed (-want +got):\n%s", diff)
	}
	if n.n != 0 {
		t.Errorf("notifications = %d, want 0", n.n)
	}
}

func TestLoad_LongLineKeepsReading(t *testing.T) {
	// Given a file whose middle line is longer than any scanner buffer
	path := filepath.Join(t.TempDir(), "contacts.csv")
	content := "Anna,1111111111,\n" + strings.Repeat("x", 2<<20) + "\nBea,2222222222,\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	l := newList(contact.Contact{Name: "Prior", Phone: "3333333333"})
	n := watch(l)

	// When it is loaded
	if err := l.Load(path); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Then both records around the long line are present
	want := []contact.Contact{
		{Name: "Anna", Phone: "1111111111"},
		{Name: "Bea", Phone: "2222222222"},
	}
	if diff := cmp.Diff(want, l.All()); diff != "" {
		t.Errorf("All() mismatch (-want +got):\n%s", diff)
	}
	if n.n != 1 {
		t.Errorf("notifications = %d, want 1", n.n)
	}
}

type failReader struct{}

func (failReader) Read([]byte) (int, error) { return 0, errors.New("device error") }

func TestLoad_ReadErrorLeavesStateUntouched(t *testing.T) {
	// Given a populated list
	l := newList(alice, bob)
	n := watch(l)

	// When a read fails after a good record has been decoded
	r := io.MultiReader(strings.NewReader("Anna,1111111111,\n"), failReader{})
	err := l.load(r, "contacts.csv")

	// Then the error is reported and the old contents survive
	if !errors.Is(err, ErrIO) {
		t.Errorf("load() error = %v, want ErrIO", err)
	}
	if diff := cmp.Diff([]contact.Contact{alice, bob}, l.All()); diff != "" {
		t.Errorf("state changed (-want +got):\n%s", diff)
	}
	if n.n != 0 {
		t.Errorf("notifications = %d, want 0", n.n)
	}
}

func TestLoad_DirectoryLeavesStateUntouched(t *testing.T) {
	l := newList(alice)

	err := l.Load(t.TempDir())

	if !errors.Is(err, ErrIO) {
		t.Errorf("Load(dir) error = %v, want ErrIO", err)
	}
	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1", l.Len())
	}
}

func TestSave_UnwritablePath(t *testing.T) {
	dir := t.TempDir()
	// A regular file where a directory is expected.
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	err := newList(alice).Save(filepath.Join(blocker, "contacts.csv"))
	if !errors.Is(err, ErrIO) {
		t.Errorf("Save() error = %v, want ErrIO", err)
	}
}

func TestSaveLoad_DefaultPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "default.csv")
	l := New(WithPath(path))
	l.Insert(carol)

	if err := l.Save(""); err != nil {
		t.Fatalf("Save(\"\") error = %v", err)
	}
	if l.Path() != path {
		t.Errorf("Path() = %q, want %q", l.Path(), path)
	}

	other := New(WithPath(path))
	if err := other.Load(""); err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if !slices.Equal(other.All(), []contact.Contact{carol}) {
		t.Errorf("All() = %v, want [carol]", other.All())
	}
}

func TestNew_DefaultPath(t *testing.T) {
	if got := New().Path(); got != "contacts.csv" {
		t.Errorf("Path() = %q, want contacts.csv", got)
	}
}
