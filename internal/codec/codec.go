// Package codec reads and writes the contacts file format: UTF-8 text, no
// header, one "name,phone,email" line per record, no quoting or escaping.
//
// A comma inside a field corrupts its line. That is a property of the format,
// not something the codec repairs.
package codec

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/smileynet/addressbook/internal/contact"
)

// DefaultFile is the file name used when no path is configured.
const DefaultFile = "contacts.csv"

const sep = ","

// Stats summarizes a Decode pass.
type Stats struct {
	Lines    int // lines read, blank ones included
	Accepted int // records handed to the callback
	Skipped  int // non-blank lines that produced no record
}

// EncodeLine formats c as a single line without the trailing newline.
func EncodeLine(c contact.Contact) string {
	return c.Name + sep + c.Phone + sep + c.Email
}

// Encode writes one line per non-empty contact.
func Encode(w io.Writer, contacts []contact.Contact) error {
	bw := bufio.NewWriter(w)
	for _, c := range contacts {
		if c.IsEmpty() {
			continue
		}
		if _, err := bw.WriteString(EncodeLine(c) + "\n"); err != nil {
			return fmt.Errorf("codec: writing record: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("codec: flushing: %w", err)
	}
	return nil
}

// DecodeLine parses one line. It reports false for blank lines, lines with
// fewer than two fields, and lines whose name and phone are both empty.
// Fields past the third are ignored.
func DecodeLine(line string) (contact.Contact, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return contact.Contact{}, false
	}
	parts := strings.Split(line, sep)
	if len(parts) < 2 {
		return contact.Contact{}, false
	}
	c := contact.Contact{
		Name:  strings.TrimSpace(parts[0]),
		Phone: strings.TrimSpace(parts[1]),
	}
	if len(parts) > 2 {
		c.Email = strings.TrimSpace(parts[2])
	}
	if c.Name == "" && c.Phone == "" {
		return contact.Contact{}, false
	}
	return c, true
}

// Decode reads r line by line and calls fn for every accepted record, in file
// order. Lines have no length limit. Malformed lines are skipped and counted;
// only read errors stop it.
func Decode(r io.Reader, fn func(contact.Contact)) (Stats, error) {
	var st Stats
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			st.Lines++
			if c, ok := DecodeLine(line); ok {
				st.Accepted++
				fn(c)
			} else if strings.TrimSpace(line) != "" {
				st.Skipped++
			}
		}
		if err == io.EOF {
			return st, nil
		}
		if err != nil {
			return st, fmt.Errorf("codec: reading: %w", err)
		}
	}
}

// DecodeAll reads every accepted record from r. On a read error it returns
// no records.
func DecodeAll(r io.Reader) ([]contact.Contact, Stats, error) {
	var out []contact.Contact
	st, err := Decode(r, func(c contact.Contact) {
		out = append(out, c)
	})
	if err != nil {
		return nil, st, err
	}
	return out, st, nil
}
