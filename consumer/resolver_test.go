package consumer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentifierPrefix(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		expected  string
	}{
		{name: "long identifier truncated", candidate: "ENUM-KATHMANDU-021", expected: "enum-kat"},
		{name: "short identifier kept whole", candidate: "BT-12", expected: "bt-12"},
		{name: "exactly prefix length", candidate: "abcd1234", expected: "abcd1234"},
		{name: "surrounding whitespace trimmed", candidate: "  Enum-Kathmandu  ", expected: "enum-kat"},
		{name: "blank candidate", candidate: "   ", expected: ""},
		{name: "empty candidate", candidate: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IdentifierPrefix(tt.candidate))
		})
	}
}
