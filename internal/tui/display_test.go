package tui

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/smileynet/addressbook/internal/contactlist"
)

// --- IsTTY ---

func TestIsTTY_NonFileWriter(t *testing.T) {
	var buf bytes.Buffer
	if IsTTY(&buf) {
		t.Error("non-*os.File writer should not be a TTY")
	}
}

func TestIsTTY_RegularFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "test")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	if IsTTY(f) {
		t.Error("regular file should not be a TTY")
	}
}

// --- NewRenderer ---

func TestNewRenderer_NonTTYIsPlain(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(DisplayOptions{Writer: &buf})
	if _, ok := r.(*PlainRenderer); !ok {
		t.Errorf("NewRenderer(buffer) = %T, want *PlainRenderer", r)
	}
}

func TestNewRenderer_ForcePlain(t *testing.T) {
	r := NewRenderer(DisplayOptions{Writer: os.Stdout, ForcePlain: true})
	if _, ok := r.(*PlainRenderer); !ok {
		t.Errorf("NewRenderer(ForcePlain) = %T, want *PlainRenderer", r)
	}
}

func TestNewRenderer_DefaultWriter(t *testing.T) {
	r := NewRenderer(DisplayOptions{ForcePlain: true})
	p, ok := r.(*PlainRenderer)
	if !ok {
		t.Fatalf("NewRenderer() = %T, want *PlainRenderer", r)
	}
	if p.w != os.Stdout {
		t.Error("default writer should be os.Stdout")
	}
}

// --- PlainRenderer ---

func TestPlainRenderer_Render(t *testing.T) {
	var buf bytes.Buffer
	r := &PlainRenderer{w: &buf}

	err := r.Render([]contactlist.Match{
		{Contact: alice, Index: 0},
		{Contact: bob, Index: 3},
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	want := "0\talice\t4445556666\talice@gmail.com\n3\tBob\t1112223333\t\n"
	if buf.String() != want {
		t.Errorf("Render() =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestPlainRenderer_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := (&PlainRenderer{w: &buf}).Render(nil); err != nil {
		t.Fatalf("Render(nil) error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Render(nil) wrote %q, want nothing", buf.String())
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestPlainRenderer_WriteError(t *testing.T) {
	err := (&PlainRenderer{w: failWriter{}}).Render([]contactlist.Match{{Contact: alice}})
	if err == nil {
		t.Fatal("Render() should surface write errors")
	}
}

// --- StyledRenderer ---

func TestStyledRenderer_Render(t *testing.T) {
	var buf bytes.Buffer
	r := &StyledRenderer{w: &buf}

	if err := r.Render([]contactlist.Match{{Contact: carol, Index: 2}}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	out := buf.String()
	for _, s := range []string{"Name", "Phone", "Email", "Carol", "7778889999", "carol@yahoo.com", "2"} {
		if !strings.Contains(out, s) {
			t.Errorf("Render() missing %q:\n%s", s, out)
		}
	}
}

func TestStyledRenderer_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := (&StyledRenderer{w: &buf}).Render(nil); err != nil {
		t.Fatalf("Render(nil) error = %v", err)
	}
	if !strings.Contains(buf.String(), "no contacts") {
		t.Errorf("Render(nil) = %q, want a notice", buf.String())
	}
}

// --- Browse ---

func TestBrowse_RefusesWithoutTTY(t *testing.T) {
	var buf bytes.Buffer
	err := Browse(context.Background(), newTestList(t, alice), BrowseOptions{Output: &buf})
	if !errors.Is(err, ErrNotTTY) {
		t.Errorf("Browse() error = %v, want ErrNotTTY", err)
	}
}
