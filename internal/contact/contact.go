// Package contact defines the address-book record and its validation rules.
package contact

import (
	"slices"
	"strings"
)

// Contact is one name/phone/email entry. Email is optional.
type Contact struct {
	Name  string
	Phone string
	Email string
}

// knownDomains is the allow-list of email providers accepted by IsValidEmail.
var knownDomains = []string{
	"gmail.com", "outlook.com", "yahoo.com", "hotmail.com",
	"icloud.com", "aol.com", "zoho.com", "protonmail.com",
	"yandex.com", "mail.com", "gmx.com", "live.com",
	"inbox.com", "fastmail.com", "rocketmail.com", "rediffmail.com",
	"cox.net", "earthlink.net", "att.net", "verizon.net",
	"sbcglobal.net", "ymail.com", "me.com", "msn.com",
	"bluewin.ch", "t-online.de", "web.de", "libero.it",
	"alice.it", "tin.it", "outlook.it",
}

// KnownDomains returns a copy of the email domain allow-list.
func KnownDomains() []string {
	return slices.Clone(knownDomains)
}

// IsEmpty reports whether all three fields are empty.
func (c Contact) IsEmpty() bool {
	return c.Name == "" && c.Phone == "" && c.Email == ""
}

// IsReal reports whether the required fields (name and phone) are both set.
func (c Contact) IsReal() bool {
	return c.Name != "" && c.Phone != ""
}

// IsValidEmail reports whether Email is empty or has a single '@' followed by
// an allow-listed domain. The domain match is case-sensitive.
func (c Contact) IsValidEmail() bool {
	if c.Email == "" {
		return true
	}
	at := strings.IndexByte(c.Email, '@')
	if at < 0 {
		return false
	}
	// Allow-listed domains never contain '@', so a second '@' fails here.
	return slices.Contains(knownDomains, c.Email[at+1:])
}

// Compare orders contacts by case-folded name only. It returns -1, 0 or +1.
func (c Contact) Compare(other Contact) int {
	return strings.Compare(strings.ToLower(c.Name), strings.ToLower(other.Name))
}

// Equal reports whether all three fields match verbatim.
func (c Contact) Equal(other Contact) bool {
	return c == other
}

// Compare is Contact.Compare as a free function, for use as a comparator.
func Compare(a, b Contact) int {
	return a.Compare(b)
}

// Matches reports whether query is a substring of the name, phone or email,
// ignoring case. An empty query matches everything.
func (c Contact) Matches(query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(c.Name), q) ||
		strings.Contains(strings.ToLower(c.Phone), q) ||
		strings.Contains(strings.ToLower(c.Email), q)
}
