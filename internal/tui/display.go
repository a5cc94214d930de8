package tui

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"

	"github.com/smileynet/addressbook/internal/contactlist"
)

// Renderer writes a set of contacts, each with its index in the full list.
type Renderer interface {
	Render(rows []contactlist.Match) error
}

// DisplayOptions configures renderer creation.
type DisplayOptions struct {
	Writer     io.Writer // Output destination (default: os.Stdout).
	ForcePlain bool      // Force plain text even if TTY.
}

// NewRenderer returns a styled table renderer when the writer is a TTY, or a
// plain tab-separated renderer otherwise. ForcePlain overrides TTY detection.
func NewRenderer(opts DisplayOptions) Renderer {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	if opts.ForcePlain || !IsTTY(opts.Writer) {
		return &PlainRenderer{w: opts.Writer}
	}

	return &StyledRenderer{w: opts.Writer}
}

// IsTTY reports whether w is connected to a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// PlainRenderer writes one tab-separated line per contact:
// index, name, phone, email.
type PlainRenderer struct {
	w io.Writer
}

// Render writes rows. An empty set writes nothing.
func (r *PlainRenderer) Render(rows []contactlist.Match) error {
	for _, m := range rows {
		c := m.Contact
		if _, err := fmt.Fprintf(r.w, "%d\t%s\t%s\t%s\n", m.Index, c.Name, c.Phone, c.Email); err != nil {
			return fmt.Errorf("tui: writing row: %w", err)
		}
	}
	return nil
}

// StyledRenderer draws rows as a bordered lipgloss table.
type StyledRenderer struct {
	w io.Writer
}

// Render writes rows as a table, or a dim notice when there are none.
func (r *StyledRenderer) Render(rows []contactlist.Match) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(r.w, DimStyle().Render("no contacts"))
		return err
	}

	header := lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	index := cell.Foreground(dim).Align(lipgloss.Right)

	t := ltable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(dim)).
		Headers("#", "Name", "Phone", "Email").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == ltable.HeaderRow:
				return header
			case col == 0:
				return index
			default:
				return cell
			}
		})
	for _, m := range rows {
		c := m.Contact
		t.Row(strconv.Itoa(m.Index), c.Name, c.Phone, c.Email)
	}

	_, err := fmt.Fprintln(r.w, t.Render())
	return err
}
