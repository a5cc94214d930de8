// Package tui renders contacts in the terminal: an interactive browser built
// on Bubble Tea and static tables for non-interactive output.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/addressbook/internal/contactlist"
)

// chrome is the number of lines used by everything except the table body:
// title, filter, table header and its rule, status and help.
const chrome = 6

// ChangedMsg reports that the list was mutated.
type ChangedMsg struct{}

// ReloadMsg asks the browser to reload the list from its file.
type ReloadMsg struct{}

// Model is the Bubble Tea model for the contact browser.
type Model struct {
	list        *contactlist.List
	changes     chan struct{}
	unsubscribe func()

	rows      []contactlist.Match
	table     table.Model
	filter    textinput.Model
	filtering bool
	help      help.Model
	keys      keyMap

	width  int
	height int
	dirty  bool
	status string
	err    error
}

// NewModel creates a browser over l. The model subscribes to l's change
// notifications; they are delivered to Update as ChangedMsg.
func NewModel(l *contactlist.List) Model {
	idx, name, phone, email := columnWidths(80)
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "#", Width: idx},
			{Title: "Name", Width: name},
			{Title: "Phone", Width: phone},
			{Title: "Email", Width: email},
		}),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	t.SetStyles(tableStyles())

	fi := textinput.New()
	fi.Prompt = "/ "
	fi.Placeholder = "name, phone or email"
	fi.CharLimit = 64

	// Notifications arrive on the goroutine that mutated the list, which is
	// Update itself, so they are queued instead of sent.
	changes := make(chan struct{}, 1)
	unsubscribe := l.Subscribe(func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	m := Model{
		list:        l,
		changes:     changes,
		unsubscribe: unsubscribe,
		table:       t,
		filter:      fi,
		help:        help.New(),
		keys:        BrowseKeyMap(),
	}
	m.refresh()
	return m
}

// Init starts listening for change notifications.
func (m Model) Init() tea.Cmd {
	return waitForChange(m.changes)
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return ChangedMsg{}
	}
}

// Err returns the error that ended the session, if any.
func (m Model) Err() error { return m.err }

// Dirty reports whether the list was changed since it was last loaded.
func (m Model) Dirty() bool { return m.dirty }

// Rows returns the matches currently shown.
func (m Model) Rows() []contactlist.Match { return m.rows }

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case ChangedMsg:
		m.refresh()
		return m, waitForChange(m.changes)

	case ReloadMsg:
		if m.dirty {
			m.status = "file changed on disk; r to reload, discarding changes"
			return m, nil
		}
		m.reload()
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		cmd := m.filter.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Clear):
		if m.filter.Value() != "" {
			m.filter.SetValue("")
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		m.deleteSelected()
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		m.reload()
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// updateFilter routes keys to the filter input, re-running the search on
// every keystroke.
func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	fk := FilterKeyMap()
	switch {
	case key.Matches(msg, fk.Apply):
		m.filtering = false
		m.filter.Blur()
		return m, nil
	case key.Matches(msg, fk.Cancel):
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.refresh()
	return m, cmd
}

// quit saves pending changes. Only a failed save is reported; errors from
// earlier reloads were already shown.
func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.err = nil
	if m.dirty {
		if err := m.list.Save(""); err != nil {
			m.err = err
		} else {
			m.dirty = false
		}
	}
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	return *m, tea.Quit
}

func (m *Model) deleteSelected() {
	cur := m.table.Cursor()
	if cur < 0 || cur >= len(m.rows) {
		return
	}
	row := m.rows[cur]
	if !m.list.RemoveAt(row.Index) {
		return
	}
	m.dirty = true
	m.status = fmt.Sprintf("deleted %s", row.Contact.Name)
	m.refresh()
}

func (m *Model) reload() {
	if err := m.list.Load(""); err != nil {
		m.err = err
		m.status = ""
		return
	}
	m.err = nil
	m.dirty = false
	m.status = fmt.Sprintf("reloaded %d contacts", m.list.Len())
	m.refresh()
}

// refresh re-runs the filter against the list and rebuilds the table rows.
func (m *Model) refresh() {
	m.rows = m.list.Search(m.filter.Value())
	rows := make([]table.Row, len(m.rows))
	for i, r := range m.rows {
		rows[i] = table.Row{
			strconv.Itoa(r.Index),
			r.Contact.Name,
			r.Contact.Phone,
			r.Contact.Email,
		}
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); len(rows) > 0 && c >= len(rows) {
		m.table.SetCursor(len(rows) - 1)
	}
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.help.Width = width
	m.filter.Width = max(width-len(m.filter.Prompt)-1, 10)

	idx, name, phone, email := columnWidths(width)
	m.table.SetColumns([]table.Column{
		{Title: "#", Width: idx},
		{Title: "Name", Width: name},
		{Title: "Phone", Width: phone},
		{Title: "Email", Width: email},
	})
	m.table.SetWidth(width)
	m.table.SetHeight(max(height-chrome, 1))
}

// View renders the header, filter, table, status line and help bar.
func (m Model) View() string {
	var b strings.Builder

	title := fmt.Sprintf("Address book · %d contacts", m.list.Len())
	if q := m.filter.Value(); q != "" && !m.filtering {
		title += fmt.Sprintf(" · %d matching %q", len(m.rows), q)
	}
	b.WriteString(TitleStyle().Render(title))
	b.WriteString("\n")

	if m.filtering {
		b.WriteString(m.filter.View())
	}
	b.WriteString("\n")

	if len(m.rows) == 0 {
		b.WriteString(DimStyle().Render("  no contacts"))
	} else {
		b.WriteString(m.table.View())
	}
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(ErrorStyle().Render("Error: " + m.err.Error()))
	case m.status != "":
		b.WriteString(StatusStyle().Render(m.status))
	}
	b.WriteString("\n")

	if m.filtering {
		b.WriteString(m.help.View(FilterKeyMap()))
	} else {
		b.WriteString(m.help.View(m.keys))
	}

	out := b.String()
	if m.width > 0 {
		out = lipgloss.NewStyle().MaxWidth(m.width).Render(out)
	}
	return out
}
