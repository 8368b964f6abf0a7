package settings

import (
	"fmt"
	"strings"

	"github.com/rook-computer/rendersettings/internal/fonts"
)

// TextBackgroundMethod controls how label text is made legible against
// whatever it is drawn over.
type TextBackgroundMethod int

const (
	TextBackgroundNone TextBackgroundMethod = iota
	TextBackgroundColorFill
	TextBackgroundOutline
	// TextBackgroundOutlineQuick is a cheaper outline with fewer passes.
	TextBackgroundOutlineQuick
)

// RenderMethod selects the representation a renderer produces.
type RenderMethod int

const (
	RenderShapes RenderMethod = iota
	RenderNative
)

// SymbologyStandard selects the symbol set version. The registry does not
// interpret it.
type SymbologyStandard int

const (
	Symbology2525B SymbologyStandard = iota
	Symbology2525C
)

// OCMType is the operational condition modifier style.
type OCMType int

const (
	OCMSlash OCMType = iota
	OCMBar
)

// Kerning is the label font kerning attribute.
type Kerning int

const (
	KerningOff Kerning = iota
	KerningOn
)

// FontStyle is a bitmask of FontBold and FontItalic.
type FontStyle = fonts.Style

const (
	FontPlain      = fonts.Plain
	FontBold       = fonts.Bold
	FontItalic     = fonts.Italic
	FontBoldItalic = fonts.BoldItalic
)

var (
	textBackgroundNames = map[TextBackgroundMethod]string{
		TextBackgroundNone:         "none",
		TextBackgroundColorFill:    "color_fill",
		TextBackgroundOutline:      "outline",
		TextBackgroundOutlineQuick: "outline_quick",
	}
	renderMethodNames = map[RenderMethod]string{
		RenderShapes: "shapes",
		RenderNative: "native",
	}
	symbologyNames = map[SymbologyStandard]string{
		Symbology2525B: "2525b",
		Symbology2525C: "2525c",
	}
	ocmNames = map[OCMType]string{
		OCMSlash: "slash",
		OCMBar:   "bar",
	}
	kerningNames = map[Kerning]string{
		KerningOff: "off",
		KerningOn:  "on",
	}
)

func enumString[T ~int](names map[T]string, kind string, v T) string {
	if name, ok := names[v]; ok {
		return name
	}
	return fmt.Sprintf("%s(%d)", kind, int(v))
}

func parseEnum[T ~int](names map[T]string, kind string, s string) (T, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for v, name := range names {
		if name == key {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", kind, s)
}

func (m TextBackgroundMethod) String() string {
	return enumString(textBackgroundNames, "text_background", m)
}

func ParseTextBackgroundMethod(s string) (TextBackgroundMethod, error) {
	return parseEnum(textBackgroundNames, "text background method", s)
}

func (m RenderMethod) String() string { return enumString(renderMethodNames, "render_method", m) }

func ParseRenderMethod(s string) (RenderMethod, error) {
	return parseEnum(renderMethodNames, "render method", s)
}

func (s SymbologyStandard) String() string { return enumString(symbologyNames, "symbology", s) }

func ParseSymbologyStandard(s string) (SymbologyStandard, error) {
	return parseEnum(symbologyNames, "symbology standard", s)
}

func (o OCMType) String() string { return enumString(ocmNames, "ocm", o) }

func ParseOCMType(s string) (OCMType, error) {
	return parseEnum(ocmNames, "operational condition modifier type", s)
}

func (k Kerning) String() string { return enumString(kerningNames, "kerning", k) }
