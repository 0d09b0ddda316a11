package credentials

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	cases := []struct {
		name string
		text string
		want Parsed
	}{
		{
			name: "plain pair",
			text: "me@example.com FUS12345",
			want: Parsed{Email: "me@example.com", EmployeeNumber: "FUS12345"},
		},
		{
			name: "reversed order",
			text: "FUS12345 me@example.com",
			want: Parsed{Email: "me@example.com", EmployeeNumber: "FUS12345"},
		},
		{
			name: "labelled fields",
			text: "email: Jane.Doe@coop.org employeeNumber: oct99",
			want: Parsed{Email: "Jane.Doe@coop.org", EmployeeNumber: "OCT99"},
		},
		{
			name: "employee number upper-cased",
			text: "fus12345",
			want: Parsed{EmployeeNumber: "FUS12345"},
		},
		{
			name: "email case preserved",
			text: "My mail is John@Example.COM",
			want: Parsed{Email: "John@Example.COM"},
		},
		{
			name: "email only",
			text: "me@example.com",
			want: Parsed{Email: "me@example.com"},
		},
		{
			name: "nothing found",
			text: "no creds here",
			want: Parsed{},
		},
		{
			name: "single digit is not an employee number",
			text: "A1",
			want: Parsed{},
		},
		{
			name: "empty input",
			text: "",
			want: Parsed{},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Extract(c.text))
		})
	}
}

func TestValidEmail(t *testing.T) {
	valid := []string{"me@example.com", "a.b-c@sub.domain.org", "x@y.zz"}
	for _, s := range valid {
		assert.True(t, ValidEmail(s), s)
	}

	invalid := []string{"", "plain", "no@tld", "two@@example.com", "spaced name@example.com", "@example.com"}
	for _, s := range invalid {
		assert.False(t, ValidEmail(s), s)
	}
}

func TestMaskEmail(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"me@example.com", "me@example.com"},                // short local part left alone
		{"jane@example.com", "ja**@example.com"},            // masked to local length
		{"longlocalpart@example.com", "lo******@example.com"}, // cap at six asterisks
		{"notanemail", "no********"},                        // non-address masked wholesale
		{"abc", "abc"},                                      // too short to leak
	}
	for _, c := range cases {
		assert.Equal(t, c.want, MaskEmail(c.in), c.in)
	}
}
