// Package credentials extracts and validates authentication credentials from
// free-text chat input. Extraction is heuristic and best-effort by design; it
// is kept pure so its false-positive/negative behavior stays independently
// testable.
package credentials

import (
	"regexp"
	"strings"
)

var (
	// emailPattern tolerates an optional "email"/"mail" label before the
	// address. The address itself is captured with case preserved.
	emailPattern = regexp.MustCompile(`(?i)(?:email|mail)?[:\s]*([\w.\-]+@[^\s]+\.[^\s]+)`)

	// employeePattern matches one or more leading letters followed by two or
	// more digits, optionally preceded by an "employeeNumber" label.
	employeePattern = regexp.MustCompile(`(?i)(?:employeeNumber\s*[:\-]?\s*)?\b([A-Z]+[0-9]{2,})\b`)

	// validEmail is the syntax check applied before credentials are sent to
	// the identity provider.
	validEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Parsed holds the credentials found in a message. Either field may be empty;
// absence is reported as missing, not as an error.
type Parsed struct {
	Email          string
	EmployeeNumber string
}

// Extract pulls an email address and an employee number out of free text.
// The two matches are independent and have no ordering requirement. Employee
// numbers are upper-cased; email case is preserved.
func Extract(text string) Parsed {
	var p Parsed
	if m := emailPattern.FindStringSubmatch(text); m != nil {
		p.Email = m[1]
	}
	if m := employeePattern.FindStringSubmatch(text); m != nil {
		p.EmployeeNumber = strings.ToUpper(m[1])
	}
	return p
}

// ValidEmail reports whether s has a plausible local@domain.tld shape.
func ValidEmail(s string) bool {
	return validEmail.MatchString(s)
}

// MaskEmail returns a display-safe form of an email address: the first two
// characters of the local part followed by up to six asterisks, domain
// preserved. Values that do not look like an address are masked wholesale
// when long enough to leak anything.
func MaskEmail(email string) string {
	if email == "" {
		return ""
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		if len(email) > 4 {
			return email[:2] + strings.Repeat("*", len(email)-2)
		}
		return email
	}
	name, domain := parts[0], parts[1]
	if len(name) <= 2 {
		return email
	}
	return name[:2] + strings.Repeat("*", min(len(name)-2, 6)) + "@" + domain
}
