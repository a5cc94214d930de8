package contact

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// PhoneDigits is the required length of a phone number.
const PhoneDigits = 10

// Sentinel errors for caller-checkable validation failures.
var (
	ErrNameRequired   = errors.New("contact: name is required")
	ErrPhoneRequired  = errors.New("contact: phone is required")
	ErrPhoneNotDigits = errors.New("contact: phone must contain only digits")
	ErrPhoneLength    = errors.New("contact: phone has wrong length")
	ErrInvalidEmail   = errors.New("contact: invalid email")
)

// Validate checks the rules an entry form applies before inserting: a name,
// a ten-digit phone and, when present, an allow-listed email. It returns the
// first failure.
func Validate(c Contact) error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrNameRequired
	}
	if err := ValidatePhone(c.Phone); err != nil {
		return err
	}
	if !c.IsValidEmail() {
		return fmt.Errorf("%w: %q (use a known provider or leave it empty)", ErrInvalidEmail, c.Email)
	}
	return nil
}

// ValidatePhone checks that phone is exactly PhoneDigits ASCII digits and not
// all zeros.
func ValidatePhone(phone string) error {
	if phone == "" {
		return ErrPhoneRequired
	}
	allZero := true
	for i := 0; i < len(phone); i++ {
		ch := phone[i]
		if ch < '0' || ch > '9' {
			return fmt.Errorf("%w: %q", ErrPhoneNotDigits, phone)
		}
		if ch != '0' {
			allZero = false
		}
	}
	if len(phone) != PhoneDigits || allZero {
		return fmt.Errorf("%w: want %d digits, got %d", ErrPhoneLength, PhoneDigits, len(phone))
	}
	return nil
}

// Capitalize upper-cases the first letter of every space-separated word and
// joins the words with single spaces. Other letters keep their case.
func Capitalize(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// Normalize trims every field and capitalizes the name.
func Normalize(c Contact) Contact {
	return Contact{
		Name:  Capitalize(strings.TrimSpace(c.Name)),
		Phone: strings.TrimSpace(c.Phone),
		Email: strings.TrimSpace(c.Email),
	}
}
