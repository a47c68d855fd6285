// Package message expands the status line template shown on every tick.
package message

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// Placeholder is replaced by the number of seconds left.
	Placeholder = "%S"

	// MaxTemplateLen is the longest template accepted, in bytes.
	MaxTemplateLen = 255

	// Default is the status line used when no template is configured.
	Default = "Waiting for " + Placeholder + " seconds, press any key to exit.."

	// maxDigits covers the sign and digits of any int64.
	maxDigits = 20
)

// Validate reports whether template can be used as a status line template.
func Validate(template string) error {
	if len(template) > MaxTemplateLen {
		return fmt.Errorf("message is %d bytes, at most %d allowed", len(template), MaxTemplateLen)
	}
	if n := strings.Count(template, Placeholder); n > 1 {
		return fmt.Errorf("message has %d %s placeholders, at most one allowed", n, Placeholder)
	}
	return nil
}

// Render replaces %S in template with secondsLeft. Line breaks are
// dropped so the result can be redrawn in place on a single terminal line.
func Render(template string, secondsLeft int) string {
	var b strings.Builder
	b.Grow(len(template) + maxDigits)

	for i := 0; i < len(template); i++ {
		c := template[i]
		switch {
		case c == '\r' || c == '\n':
			continue
		case c == '%' && i+1 < len(template) && template[i+1] == 'S':
			b.WriteString(strconv.Itoa(secondsLeft))
			i++
		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}
