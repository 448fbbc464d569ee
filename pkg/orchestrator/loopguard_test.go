package orchestrator

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectTextLoop(t *testing.T) {
	t.Run("no loop in normal prose", func(t *testing.T) {
		// Each sentence carries a distinct number, so the recurring
		// "all systems nominal..." suffix never lands at a fixed byte
		// stride twice in a row and no exact repeat forms.
		var b strings.Builder
		for i := 1; i <= 50; i++ {
			fmt.Fprintf(&b, "Status update number %d: all systems nominal and humming along fine. ", i)
		}
		detected, _ := detectTextLoop(b.String())
		assert.False(t, detected)
	})

	t.Run("detects a short repeating pattern", func(t *testing.T) {
		pattern := strings.Repeat("x", loopMinPatternLen)
		text := strings.Repeat(pattern, loopMinRepeats+2)
		detected, truncateAt := detectTextLoop(text)
		assert.True(t, detected)
		assert.Less(t, truncateAt, len(text))
	})

	t.Run("does not trigger below the minimum repeat count", func(t *testing.T) {
		pattern := strings.Repeat("y", loopMinPatternLen)
		text := strings.Repeat(pattern, loopMinRepeats-1)
		detected, _ := detectTextLoop(text)
		assert.False(t, detected)
	})

	t.Run("truncation point preserves non-repeating prefix", func(t *testing.T) {
		prefix := "This is a unique preamble that should survive truncation. "
		pattern := strings.Repeat("z", loopMinPatternLen)
		text := prefix + strings.Repeat(pattern, loopMinRepeats+3)
		detected, truncateAt := detectTextLoop(text)
		assert.True(t, detected)
		assert.GreaterOrEqual(t, truncateAt, len(prefix))
	})
}
