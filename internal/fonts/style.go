package fonts

import (
	"fmt"
	"strings"
)

// Style is a bitmask of Bold and Italic, numbered like AWT font styles.
type Style int

const (
	Plain      Style = 0
	Bold       Style = 1
	Italic     Style = 2
	BoldItalic Style = Bold | Italic
)

func (s Style) Valid() bool { return s >= Plain && s <= BoldItalic }

func (s Style) String() string {
	switch s {
	case Plain:
		return "plain"
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case BoldItalic:
		return "bold_italic"
	default:
		return fmt.Sprintf("style(%d)", int(s))
	}
}

// ParseStyle accepts the names produced by String.
func ParseStyle(name string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "plain", "regular", "":
		return Plain, nil
	case "bold":
		return Bold, nil
	case "italic":
		return Italic, nil
	case "bold_italic", "bolditalic", "bold-italic":
		return BoldItalic, nil
	}
	return Plain, fmt.Errorf("%w: %q", ErrInvalidStyle, name)
}
