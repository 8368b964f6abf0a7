package settings

import (
	"errors"
	"fmt"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/rook-computer/rendersettings/internal/fonts"
)

const logComponent = "RenderSettings"

// FontDescriptor is the stored description of a label font. Kerning and
// Tracking apply to the primary label font only.
type FontDescriptor struct {
	Family   string
	Style    FontStyle
	Size     int // points
	Kerning  Kerning
	Tracking float32
}

var fallbackFont = FontDescriptor{
	Family: DefaultFontFamily,
	Style:  FontBold,
	Size:   DefaultFontSize,
}

// FallbackFont is the descriptor LabelFont and MPLabelFont substitute when
// the stored one cannot be built.
func FallbackFont() FontDescriptor { return fallbackFont }

// Font is a descriptor realized at the registry's device DPI.
type Font struct {
	Descriptor FontDescriptor
	Face       font.Face
	// TrueType is nil when Face is the built-in bitmap face.
	TrueType *truetype.Font
}

// FontError reports a descriptor that could not be turned into a Font.
type FontError struct {
	Operation  string
	Descriptor FontDescriptor
	Err        error
}

func (e *FontError) Error() string {
	return fmt.Sprintf("%s: font %q %s %dpt: %v", e.Operation, e.Descriptor.Family, e.Descriptor.Style, e.Descriptor.Size, e.Err)
}

func (e *FontError) Unwrap() error { return e.Err }

func (r *Registry) buildFont(operation string, d FontDescriptor, kerning bool) (Font, error) {
	opts := fonts.FaceOptions{
		Size:     d.Size,
		DPI:      r.DeviceDPI(),
		Kerning:  kerning,
		Tracking: d.Tracking,
	}
	face, err := r.catalog.Face(d.Family, d.Style, opts)
	if err != nil {
		return Font{}, &FontError{Operation: operation, Descriptor: d, Err: err}
	}
	tt, err := r.catalog.TrueType(d.Family, d.Style)
	if err != nil {
		return Font{}, &FontError{Operation: operation, Descriptor: d, Err: err}
	}
	return Font{Descriptor: d, Face: face, TrueType: tt}, nil
}

// ResolveLabelFont builds the primary label font with its kerning and
// tracking attributes.
func (r *Registry) ResolveLabelFont() (Font, error) {
	d := r.LabelFontDescriptor()
	return r.buildFont("LabelFont", d, d.Kerning == KerningOn)
}

// ResolveMPLabelFont builds the multi-point label font. It carries no
// tracking and keeps the face's own kerning.
func (r *Registry) ResolveMPLabelFont() (Font, error) {
	d := r.MPLabelFontDescriptor()
	d.Kerning = KerningOff
	d.Tracking = 0
	return r.buildFont("MPLabelFont", d, true)
}

// LabelFont never fails: a descriptor that cannot be built is logged and
// replaced by FallbackFont.
func (r *Registry) LabelFont() Font {
	f, err := r.ResolveLabelFont()
	if err != nil {
		return r.recoverFont("LabelFont", err)
	}
	return f
}

// MPLabelFont is LabelFont for the multi-point label font.
func (r *Registry) MPLabelFont() Font {
	f, err := r.ResolveMPLabelFont()
	if err != nil {
		return r.recoverFont("MPLabelFont", err)
	}
	return f
}

func (r *Registry) recoverFont(operation string, err error) Font {
	d := fallbackFont
	var fe *FontError
	if errors.As(err, &fe) {
		d = fe.Descriptor
	}
	r.logger.LogMessage(logComponent, operation, fmt.Sprintf(
		"font creation error for %q %dpt, returning %q %s %dpt. Check font name and type.",
		d.Family, d.Size, fallbackFont.Family, fallbackFont.Style, fallbackFont.Size))
	r.logger.LogMessage(logComponent, operation, err.Error())

	if f, ferr := r.buildFont(operation, fallbackFont, true); ferr == nil {
		return f
	}
	if f, ferr := fallbackFromDefaultCatalog(r.DeviceDPI()); ferr == nil {
		return f
	}
	return Font{Descriptor: fallbackFont, Face: basicfont.Face7x13}
}

func fallbackFromDefaultCatalog(dpi int) (Font, error) {
	catalog := fonts.Default()
	opts := fonts.FaceOptions{Size: fallbackFont.Size, DPI: dpi, Kerning: true}
	face, err := catalog.Face(fallbackFont.Family, fallbackFont.Style, opts)
	if err != nil {
		return Font{}, err
	}
	tt, err := catalog.TrueType(fallbackFont.Family, fallbackFont.Style)
	if err != nil {
		return Font{}, err
	}
	return Font{Descriptor: fallbackFont, Face: face, TrueType: tt}, nil
}
