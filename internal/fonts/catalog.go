// Package fonts resolves font family names into renderable faces.
//
// A Catalog maps case-insensitive family names (and aliases) to parsed
// font data for each style variant. The default catalog is seeded with the
// Go font families so that the usual label families ("arial",
// "helvetica", "courier", ...) always resolve to something.
package fonts

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

var (
	ErrUnknownFamily = errors.New("unknown font family")
	ErrInvalidStyle  = errors.New("invalid font style")
	ErrInvalidSize   = errors.New("invalid font size")
)

// variant holds one style of a family parsed for both rasterizers.
type variant struct {
	sfnt *opentype.Font
	tt   *truetype.Font
}

type family struct {
	name     string
	variants [BoldItalic + 1]*variant
}

// Catalog is safe for concurrent use.
type Catalog struct {
	mu       sync.RWMutex
	families map[string]*family
	aliases  map[string]string
}

func NewCatalog() *Catalog {
	return &Catalog{
		families: make(map[string]*family),
		aliases:  make(map[string]string),
	}
}

var (
	defaultCatalogOnce sync.Once
	defaultCatalog     *Catalog
)

// Default returns the shared catalog seeded with the Go fonts.
func Default() *Catalog {
	defaultCatalogOnce.Do(func() {
		catalog := NewCatalog()
		seed := []struct {
			family string
			style  Style
			data   []byte
		}{
			{"go", Plain, goregular.TTF},
			{"go", Bold, gobold.TTF},
			{"go", Italic, goitalic.TTF},
			{"go", BoldItalic, gobolditalic.TTF},
			{"go mono", Plain, gomono.TTF},
			{"go mono", Bold, gomonobold.TTF},
			{"go mono", Italic, gomonoitalic.TTF},
			{"go mono", BoldItalic, gomonobolditalic.TTF},
		}
		for _, s := range seed {
			if err := catalog.Register(s.family, s.style, s.data); err != nil {
				panic(err)
			}
		}
		for _, alias := range []string{"arial", "helvetica", "sans-serif", "sansserif", "dialog", "times", "serif"} {
			_ = catalog.Alias(alias, "go")
		}
		for _, alias := range []string{"courier", "courier new", "monospace", "monospaced"} {
			_ = catalog.Alias(alias, "go mono")
		}
		defaultCatalog = catalog
	})
	return defaultCatalog
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register parses data as an OpenType/TrueType font and stores it as the
// given style of family, replacing any previous variant.
func (c *Catalog) Register(familyName string, style Style, data []byte) error {
	key := normalize(familyName)
	if key == "" {
		return fmt.Errorf("register font: %w: empty name", ErrUnknownFamily)
	}
	if !style.Valid() {
		return fmt.Errorf("register font %q: %w: %d", familyName, ErrInvalidStyle, style)
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("register font %q: parse opentype: %w", familyName, err)
	}
	tt, err := truetype.Parse(data)
	if err != nil {
		return fmt.Errorf("register font %q: parse truetype: %w", familyName, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	fam, ok := c.families[key]
	if !ok {
		fam = &family{name: key}
		c.families[key] = fam
	}
	fam.variants[style] = &variant{sfnt: parsed, tt: tt}
	return nil
}

// Alias makes alias resolve to an already registered family.
func (c *Catalog) Alias(alias, familyName string) error {
	aliasKey := normalize(alias)
	target := normalize(familyName)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.families[target]; !ok {
		return fmt.Errorf("alias %q: %w: %q", alias, ErrUnknownFamily, familyName)
	}
	c.aliases[aliasKey] = target
	return nil
}

// Families lists registered family names and aliases, sorted.
func (c *Catalog) Families() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.families)+len(c.aliases))
	for name := range c.families {
		names = append(names, name)
	}
	for name := range c.aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// lookup finds the variant for style, falling back to the family's plain
// face when the requested style was never registered.
func (c *Catalog) lookup(familyName string, style Style) (*variant, error) {
	if !style.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStyle, style)
	}
	key := normalize(familyName)

	c.mu.RLock()
	defer c.mu.RUnlock()
	if target, ok := c.aliases[key]; ok {
		key = target
	}
	fam, ok := c.families[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFamily, familyName)
	}
	if v := fam.variants[style]; v != nil {
		return v, nil
	}
	for _, v := range fam.variants {
		if v != nil {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: %q has no variants", ErrUnknownFamily, familyName)
}

// FaceOptions configures a face built by Catalog.Face.
type FaceOptions struct {
	Size     int // points
	DPI      int // <= 0 means 72
	Kerning  bool
	Tracking float32 // fraction of the em size added to each advance
}

func (o FaceOptions) dpi() float64 {
	if o.DPI <= 0 {
		return 72
	}
	return float64(o.DPI)
}

// Face builds a font.Face for the family and style.
func (c *Catalog) Face(familyName string, style Style, opts FaceOptions) (font.Face, error) {
	if opts.Size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, opts.Size)
	}
	v, err := c.lookup(familyName, style)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(v.sfnt, &opentype.FaceOptions{
		Size:    float64(opts.Size),
		DPI:     opts.dpi(),
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face %q: %w", familyName, err)
	}
	return withAttributes(face, opts), nil
}

// TrueType returns the parsed font for freetype based rasterizers.
func (c *Catalog) TrueType(familyName string, style Style) (*truetype.Font, error) {
	v, err := c.lookup(familyName, style)
	if err != nil {
		return nil, err
	}
	return v.tt, nil
}
