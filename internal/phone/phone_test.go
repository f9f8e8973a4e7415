package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "dashed local number", raw: "555-123-4567", want: "+15551234567"},
		{name: "spaces", raw: "555 123 4567", want: "+15551234567"},
		{name: "leading country digit", raw: "15551234567", want: "+15551234567"},
		{name: "already canonical", raw: "+15551234567", want: "+15551234567"},
		{name: "canonical with separators", raw: "+1 555-123-4567", want: "+15551234567"},
		{name: "empty input", raw: "", want: "+1"},
		{name: "other country code is prefixed", raw: "+44 20 7946 0958", want: "+1+442079460958"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.raw))
		})
	}
}

func TestFormat_Idempotent(t *testing.T) {
	inputs := []string{
		"", " ", "-", "1", "+", "+1", "555-123-4567", "1 555 123 4567", "+15551234567",
		"abc", "++1", "1-", "  1  ", "+2 555", "12345678901234",
	}
	for _, in := range inputs {
		once := Format(in)
		assert.Equal(t, once, Format(once), "input %q", in)
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		number string
		want   bool
	}{
		{"+15551234567", true},
		{"+1555123456", false},
		{"+155512345678", false},
		{"15551234567", false},
		{"+25551234567", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.number, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValid(tt.number))
		})
	}
}

func TestIsValid_OfFormatted(t *testing.T) {
	for _, in := range []string{"555-123-4567", "1-555-123-4567", "555", "+1 555 123 45678"} {
		formatted := Format(in)
		want := len(formatted) == CanonicalLength && formatted[:2] == CountryPrefix
		assert.Equal(t, want, IsValid(formatted), "input %q", in)
	}
}
