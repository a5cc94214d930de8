// Package contactlist implements the sorted contact collection.
//
// A List keeps its contacts in a singly-linked chain ordered by
// contact.Compare. Every mutation that can change order re-sorts the whole
// chain before returning, and every successful mutation notifies observers
// registered with Subscribe.
//
// A List is meant for a single owner. It holds no lock; callers that share
// one across goroutines must serialize access themselves.
package contactlist

import (
	"go.uber.org/zap"

	"github.com/smileynet/addressbook/internal/chain"
	"github.com/smileynet/addressbook/internal/codec"
	"github.com/smileynet/addressbook/internal/contact"
	"github.com/smileynet/addressbook/internal/logging"
	"github.com/smileynet/addressbook/internal/mergesort"
)

// Match is a search hit together with its position in the unfiltered,
// sorted list.
type Match struct {
	Contact contact.Contact
	Index   int
}

// List is the sorted contact collection.
type List struct {
	arena  chain.Arena[contact.Contact]
	head   int
	count  int
	sorter *mergesort.Sorter[contact.Contact]

	sortOpts mergesort.Options
	path     string
	log      *zap.Logger

	observers []observer
	nextObsID int
}

type observer struct {
	id int
	fn func()
}

// Option configures a List.
type Option func(*List)

// WithSortOptions sets the merge sort's parallel threshold and worker bound.
func WithSortOptions(opts mergesort.Options) Option {
	return func(l *List) { l.sortOpts = opts }
}

// WithLogger sets the logger used for debug output.
func WithLogger(log *zap.Logger) Option {
	return func(l *List) { l.log = log }
}

// WithPath sets the file used by Save and Load when they are given "".
func WithPath(path string) Option {
	return func(l *List) { l.path = path }
}

// New returns an empty List.
func New(opts ...Option) *List {
	l := &List{
		head:     chain.Nil,
		sortOpts: mergesort.DefaultOptions(),
		path:     codec.DefaultFile,
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.sortOpts.Logger == nil {
		l.sortOpts.Logger = l.log
	}
	l.sorter = mergesort.New(contact.Compare, l.sortOpts)
	return l
}

// Path returns the default file used by Save and Load.
func (l *List) Path() string { return l.path }

// SortStats returns the counters of the underlying merge sort.
func (l *List) SortStats() mergesort.Stats { return l.sorter.Stats() }

// Subscribe registers fn to be called after every successful mutation. The
// returned function removes it.
func (l *List) Subscribe(fn func()) (unsubscribe func()) {
	l.nextObsID++
	id := l.nextObsID
	l.observers = append(l.observers, observer{id: id, fn: fn})
	return func() {
		for i, o := range l.observers {
			if o.id == id {
				l.observers = append(l.observers[:i], l.observers[i+1:]...)
				return
			}
		}
	}
}

func (l *List) notify() {
	for _, o := range append([]observer(nil), l.observers...) {
		o.fn()
	}
}

func (l *List) sort() {
	l.head = l.sorter.Sort(&l.arena, l.head, l.count)
}

// Insert adds c at the head of the chain and re-sorts the whole list.
// It never validates c.
func (l *List) Insert(c contact.Contact) {
	l.insert(c)
	l.notify()
}

func (l *List) insert(c contact.Contact) {
	l.head = l.arena.Alloc(c, l.head)
	l.count++
	l.sort()
}

// find returns the first node whose name equals name exactly, and its
// predecessor.
func (l *List) find(name string) (pred, idx int) {
	pred = chain.Nil
	for i := l.head; i != chain.Nil; i = l.arena.Next(i) {
		if l.arena.Value(i).Name == name {
			return pred, i
		}
		pred = i
	}
	return chain.Nil, chain.Nil
}

// RemoveByName removes the first contact whose name equals name
// (case-sensitive). It reports whether one was found.
func (l *List) RemoveByName(name string) bool {
	pred, idx := l.find(name)
	if idx == chain.Nil {
		return false
	}
	l.head = l.arena.Unlink(l.head, pred, idx)
	l.count--
	l.notify()
	return true
}

// RemoveAt removes the contact at sorted position i. It returns false,
// changing nothing, when i is outside [0, Len()).
func (l *List) RemoveAt(i int) bool {
	if i < 0 || i >= l.count {
		return false
	}
	pred := chain.Nil
	if i > 0 {
		pred = l.arena.At(l.head, i-1)
	}
	idx := l.arena.At(l.head, i)
	l.head = l.arena.Unlink(l.head, pred, idx)
	l.count--
	l.notify()
	return true
}

// UpdateByName replaces the first contact whose name equals name and
// re-sorts. It reports whether one was found.
func (l *List) UpdateByName(name string, c contact.Contact) bool {
	_, idx := l.find(name)
	if idx == chain.Nil {
		return false
	}
	l.arena.SetValue(idx, c)
	l.sort()
	l.notify()
	return true
}

// UpdateAt replaces the contact at sorted position i and re-sorts. It
// returns false, changing nothing, when i is outside [0, Len()).
func (l *List) UpdateAt(i int, c contact.Contact) bool {
	if i < 0 || i >= l.count {
		return false
	}
	idx := l.arena.At(l.head, i)
	if idx == chain.Nil {
		return false
	}
	l.arena.SetValue(idx, c)
	l.sort()
	l.notify()
	return true
}

// At returns a copy of the contact at sorted position i, or the zero
// Contact when i is out of range.
func (l *List) At(i int) contact.Contact {
	if i < 0 || i >= l.count {
		return contact.Contact{}
	}
	idx := l.arena.At(l.head, i)
	if idx == chain.Nil {
		return contact.Contact{}
	}
	return l.arena.Value(idx)
}

// Search returns, in list order, every contact whose name, phone or email
// contains query ignoring case, each with its index in the full list.
func (l *List) Search(query string) []Match {
	var out []Match
	pos := 0
	l.arena.Walk(l.head, func(_ int, c contact.Contact) bool {
		if c.Matches(query) {
			out = append(out, Match{Contact: c, Index: pos})
		}
		pos++
		return true
	})
	return out
}

// Contains reports whether value equals the name or the phone of some
// contact.
func (l *List) Contains(value string) bool {
	found := false
	l.arena.Walk(l.head, func(_ int, c contact.Contact) bool {
		found = c.Name == value || c.Phone == value
		return !found
	})
	return found
}

// All returns a copy of every contact in sorted order.
func (l *List) All() []contact.Contact {
	out := make([]contact.Contact, 0, l.count)
	l.arena.Walk(l.head, func(_ int, c contact.Contact) bool {
		out = append(out, c)
		return true
	})
	return out
}

// Len returns the number of contacts.
func (l *List) Len() int { return l.count }

// IsEmpty reports whether the list holds no contacts.
func (l *List) IsEmpty() bool { return l.count == 0 }

// Clear drops every contact. It does not notify observers.
func (l *List) Clear() {
	l.arena.Reset()
	l.head = chain.Nil
	l.count = 0
}
