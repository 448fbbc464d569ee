package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsApproved(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected bool
	}{
		{
			name:     "plain approval",
			content:  "This looks great. @@SIGNED OFF@@",
			expected: true,
		},
		{
			name:     "case insensitive token",
			content:  "@@signed off@@",
			expected: true,
		},
		{
			name:     "negated with NOT",
			content:  "I am NOT @@SIGNED OFF@@ on this draft yet.",
			expected: false,
		},
		{
			name:     "negated with NO",
			content:  "NO @@SIGNED OFF@@ until the intro is fixed.",
			expected: false,
		},
		{
			name:     "negated with NEVER",
			content:  "I would NEVER @@SIGNED OFF@@ on something this rough.",
			expected: false,
		},
		{
			name:     "negation word as substring does not count",
			content:  "CANNOT @@SIGNED OFF@@",
			expected: true,
		},
		{
			name:     "no token at all",
			content:  "Please revise the second paragraph.",
			expected: false,
		},
		{
			name:     "second occurrence unnegated rescues approval",
			content:  "NOT @@SIGNED OFF@@ yet, but after revision: @@SIGNED OFF@@",
			expected: true,
		},
		{
			name:     "negation separated by newline still counts",
			content:  "NOT\n@@SIGNED OFF@@",
			expected: false,
		},
		{
			name:     "negation several words before the token",
			content:  "We do NOT consider this @@SIGNED OFF@@",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsApproved(tt.content))
		})
	}
}
