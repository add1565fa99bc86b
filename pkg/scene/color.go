package scene

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseColor validates a hex color ("#fff" or "#ffffff") and returns it
// normalized to lowercase "#rrggbb".
func ParseColor(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return "", fmt.Errorf("scene: invalid color %q: %w", s, err)
	}
	return c.Hex(), nil
}
