package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/smileynet/addressbook/internal/config"
	"github.com/smileynet/addressbook/internal/contact"
	"github.com/smileynet/addressbook/internal/contactlist"
	"github.com/smileynet/addressbook/internal/logging"
	"github.com/smileynet/addressbook/internal/tui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var (
	errNotFound  = errors.New("contact not found")
	errDuplicate = errors.New("contact already exists")
	errInvalid   = errors.New("invalid contacts in file")
)

// Globals holds flags shared by every command.
type Globals struct {
	File  string `help:"Contacts file (overrides config)." short:"f" type:"path"`
	Plain bool   `help:"Force plain text output even if stdout is a TTY."`
}

// CLI is the top-level command structure for addressbook.
type CLI struct {
	Globals

	Version  kong.VersionFlag `help:"Show version." short:"V"`
	Add      AddCmd           `cmd:"" help:"Add a contact."`
	Remove   RemoveCmd        `cmd:"" help:"Remove a contact by name."`
	Update   UpdateCmd        `cmd:"" help:"Update a contact by name or index."`
	List     ListCmd          `cmd:"" help:"List all contacts."`
	Search   SearchCmd        `cmd:"" help:"Search contacts by name, phone or email."`
	Validate ValidateCmd      `cmd:"" help:"Check every stored contact."`
	Browse   BrowseCmd        `cmd:"" help:"Browse contacts interactively."`
}

// loadConfig loads layered config from user and project paths with env overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadLayered(
		os.ExpandEnv("$HOME/.config/addressbook/config.yaml"),
		".addressbook.yaml",
	)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// session is the state every command starts from.
type session struct {
	cfg  *config.Config
	log  *zap.Logger
	list *contactlist.List
}

// openSession loads config, builds the logger and list, and reads the
// contacts file. A missing file is an empty book.
func openSession(g *Globals) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if g.File != "" {
		cfg.Store.Path = g.File
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
	if err != nil {
		return nil, err
	}

	l, err := openList(cfg, log)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, log: log, list: l}, nil
}

func openList(cfg *config.Config, log *zap.Logger) (*contactlist.List, error) {
	l := contactlist.New(
		contactlist.WithPath(cfg.Store.Path),
		contactlist.WithSortOptions(cfg.SortOptions()),
		contactlist.WithLogger(log),
	)
	if err := l.Load(""); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		log.Debug("contacts file missing, starting empty", zap.String("path", cfg.Store.Path))
	}
	return l, nil
}

func (s *session) close() {
	_ = s.log.Sync()
}

// --- add ---

// AddCmd adds a contact.
type AddCmd struct {
	Name           string `arg:"" help:"Contact name."`
	Phone          string `arg:"" help:"Ten-digit phone number."`
	Email          string `arg:"" optional:"" help:"Email address at a known provider."`
	AllowDuplicate bool   `help:"Add even if the name or phone is already stored."`
}

// Run executes the add command.
func (a *AddCmd) Run(g *Globals) error {
	s, err := openSession(g)
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	defer s.close()
	return a.run(os.Stdout, s.list, s.log)
}

// run adds the contact to l and saves it, enabling testable wiring.
func (a *AddCmd) run(w io.Writer, l *contactlist.List, log *zap.Logger) error {
	c := contact.Normalize(contact.Contact{Name: a.Name, Phone: a.Phone, Email: a.Email})
	if err := contact.Validate(c); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	if !a.AllowDuplicate && (l.Contains(c.Name) || l.Contains(c.Phone)) {
		return fmt.Errorf("add: %w: %s", errDuplicate, c.Name)
	}

	l.Insert(c)
	if err := l.Save(""); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	log.Info("contact added", zap.String("name", c.Name), zap.Int("count", l.Len()))
	_, _ = fmt.Fprintf(w, "Added %s\n", c.Name)
	return nil
}

// --- remove ---

// RemoveCmd removes a contact by exact name.
type RemoveCmd struct {
	Name string `arg:"" help:"Exact contact name (case-sensitive)."`
}

// Run executes the remove command.
func (r *RemoveCmd) Run(g *Globals) error {
	s, err := openSession(g)
	if err != nil {
		return fmt.Errorf("remove: %w", err)
	}
	defer s.close()
	return r.run(os.Stdout, s.list)
}

func (r *RemoveCmd) run(w io.Writer, l *contactlist.List) error {
	if !l.RemoveByName(r.Name) {
		return fmt.Errorf("remove: %w: %q", errNotFound, r.Name)
	}
	if err := l.Save(""); err != nil {
		return fmt.Errorf("remove: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Removed %s\n", r.Name)
	return nil
}

// --- update ---

// UpdateCmd replaces fields of an existing contact, addressed by name or by
// position in the sorted list.
type UpdateCmd struct {
	Target string `arg:"" optional:"" help:"Exact name of the contact to update."`
	Index  int    `help:"Position in the sorted list (see list)." default:"-1"`
	Name   string `help:"New name."`
	Phone  string `help:"New phone."`
	Email  string `help:"New email."`
}

// Run executes the update command.
func (u *UpdateCmd) Run(g *Globals) error {
	s, err := openSession(g)
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	defer s.close()
	return u.run(os.Stdout, s.list)
}

func (u *UpdateCmd) run(w io.Writer, l *contactlist.List) error {
	if (u.Target == "") == (u.Index < 0) {
		return errors.New("update: give either a name or --index")
	}

	var old contact.Contact
	if u.Target != "" {
		found := false
		for _, ct := range l.All() {
			if ct.Name == u.Target {
				old, found = ct, true
				break
			}
		}
		if !found {
			return fmt.Errorf("update: %w: %q", errNotFound, u.Target)
		}
	} else {
		if u.Index >= l.Len() {
			return fmt.Errorf("update: %w: index %d of %d", errNotFound, u.Index, l.Len())
		}
		old = l.At(u.Index)
	}

	c := old
	if u.Name != "" {
		c.Name = u.Name
	}
	if u.Phone != "" {
		c.Phone = u.Phone
	}
	if u.Email != "" {
		c.Email = u.Email
	}
	c = contact.Normalize(c)
	if err := contact.Validate(c); err != nil {
		return fmt.Errorf("update: %w", err)
	}

	var ok bool
	if u.Target != "" {
		ok = l.UpdateByName(u.Target, c)
	} else {
		ok = l.UpdateAt(u.Index, c)
	}
	if !ok {
		return fmt.Errorf("update: %w", errNotFound)
	}
	if err := l.Save(""); err != nil {
		return fmt.Errorf("update: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Updated %s\n", c.Name)
	return nil
}

// --- list / search ---

// ListCmd prints every contact.
type ListCmd struct{}

// Run executes the list command.
func (c *ListCmd) Run(g *Globals) error {
	s, err := openSession(g)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	defer s.close()
	return c.run(tui.NewRenderer(tui.DisplayOptions{ForcePlain: g.Plain}), s.list)
}

func (c *ListCmd) run(r tui.Renderer, l *contactlist.List) error {
	all := l.All()
	rows := make([]contactlist.Match, len(all))
	for i, ct := range all {
		rows[i] = contactlist.Match{Contact: ct, Index: i}
	}
	if err := r.Render(rows); err != nil {
		return fmt.Errorf("list: %w", err)
	}
	return nil
}

// SearchCmd prints contacts matching a query with their list index.
type SearchCmd struct {
	Query string `arg:"" help:"Case-insensitive substring of name, phone or email."`
}

// Run executes the search command.
func (c *SearchCmd) Run(g *Globals) error {
	s, err := openSession(g)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	defer s.close()
	return c.run(tui.NewRenderer(tui.DisplayOptions{ForcePlain: g.Plain}), s.list)
}

func (c *SearchCmd) run(r tui.Renderer, l *contactlist.List) error {
	if err := r.Render(l.Search(c.Query)); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	return nil
}

// --- validate ---

// ValidateCmd checks every stored contact against the entry rules.
type ValidateCmd struct{}

// Run executes the validate command.
func (c *ValidateCmd) Run(g *Globals) error {
	s, err := openSession(g)
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	defer s.close()
	return c.run(os.Stdout, s.list)
}

func (c *ValidateCmd) run(w io.Writer, l *contactlist.List) error {
	bad, incomplete := 0, 0
	badEmail := false
	for i, ct := range l.All() {
		err := contact.Validate(ct)
		if err == nil {
			continue
		}
		bad++
		if !ct.IsReal() {
			incomplete++
		}
		badEmail = badEmail || errors.Is(err, contact.ErrInvalidEmail)
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", i, ct.Name, err)
	}
	if badEmail {
		_, _ = fmt.Fprintf(w, "Accepted email domains: %s\n", strings.Join(contact.KnownDomains(), ", "))
	}
	if bad > 0 {
		return fmt.Errorf("validate: %w: %d of %d (%d missing name or phone)", errInvalid, bad, l.Len(), incomplete)
	}
	_, _ = fmt.Fprintf(w, "All %d contacts valid\n", l.Len())
	return nil
}

// --- browse ---

// BrowseCmd opens the interactive contact browser.
type BrowseCmd struct {
	NoWatch bool `help:"Do not reload when the file changes on disk."`
}

// browser abstracts tui.Browse for testing.
type browser func(ctx context.Context, l *contactlist.List, opts tui.BrowseOptions) error

// Run executes the browse command.
func (b *BrowseCmd) Run(g *Globals) error {
	if g.Plain {
		return fmt.Errorf("browse: %w", tui.ErrNotTTY)
	}
	s, err := openSession(g)
	if err != nil {
		return fmt.Errorf("browse: %w", err)
	}
	defer s.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return b.run(ctx, tui.Browse, s.list, tui.BrowseOptions{
		Watch:  s.cfg.Browse.Watch && !b.NoWatch,
		Logger: s.log,
	})
}

func (b *BrowseCmd) run(ctx context.Context, browse browser, l *contactlist.List, opts tui.BrowseOptions) error {
	if err := browse(ctx, l, opts); err != nil {
		return fmt.Errorf("browse: %w", err)
	}
	return nil
}

const (
	exitSuccess = 0
	exitUser    = 1
	exitSetup   = 2
)

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	switch {
	case errors.Is(err, errNotFound),
		errors.Is(err, errDuplicate),
		errors.Is(err, errInvalid),
		errors.Is(err, contact.ErrNameRequired),
		errors.Is(err, contact.ErrPhoneRequired),
		errors.Is(err, contact.ErrPhoneNotDigits),
		errors.Is(err, contact.ErrPhoneLength),
		errors.Is(err, contact.ErrInvalidEmail):
		return exitUser
	}
	return exitSetup
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("addressbook"),
		kong.Description("Keep a sorted address book in a plain comma-separated file."),
		kong.Vars{"version": version + " " + commit + " " + date},
	)
	err := ctx.Run(&cli.Globals)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
