package htmltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrip(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<p>Happy Birthday, John!</p>", "Happy Birthday, John!"},
		{"<p>Line one</p><p>Line two</p>", "Line one\nLine two"},
		{"Hello<br/>World", "Hello\nWorld"},
		{"<b>Bold</b> and <i>italic</i>", "Bold and italic"},
		{"Fish &amp; Chips &gt; everything", "Fish & Chips > everything"},
		{"no markup at all", "no markup at all"},
		{"  <div>  spaced   out  </div>  ", "spaced out"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Strip(tt.in), "input %q", tt.in)
	}
}
