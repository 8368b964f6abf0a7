// Package settings holds the render settings shared by the symbol, unit
// and label renderers.
//
// Renderers read values at the moment they need them; nothing is cached
// and no change notifications are sent. A session normally constructs one
// Registry with New and passes it to every renderer; GetInstance returns a
// process-wide instance for callers that have no session to hang it on.
//
// Setters store what they are given. Range checks on widths, thresholds
// and DPI belong to the renderers that consume them.
package settings

import (
	"image/color"
	"math"
	"sync"
	"sync/atomic"

	"github.com/rook-computer/rendersettings/internal/fonts"
	"github.com/rook-computer/rendersettings/internal/logging"
)

// Defaults applied by New.
const (
	DefaultTextBackgroundMethod             = TextBackgroundOutlineQuick
	DefaultTextBackgroundAutoColorThreshold = 160
	DefaultDeviceDPI                        = 90
	DefaultSinglePointSymbolOutlineWidth    = 1
	DefaultFontFamily                       = "arial"
	DefaultFontStyle                        = FontBold
	DefaultFontSize                         = 12

	// Outline widths forced by SetTextBackgroundMethod.
	OutlineWidthForOutline      = 4
	OutlineWidthForOutlineQuick = 2

	// TrackingLoose is the tracking applied by the short SetLabelFont form.
	TrackingLoose float32 = 0.04
)

// Logger receives recovered font construction failures.
type Logger interface {
	LogMessage(component, operation, message string)
}

// Registry is safe for concurrent use. It must not be copied.
type Registry struct {
	// text background policy and its dependent outline width
	textMu               sync.RWMutex
	textBackgroundMethod TextBackgroundMethod
	textOutlineWidth     int

	colorMu         sync.RWMutex
	labelForeground *color.RGBA
	labelBackground *color.RGBA

	outlineMu               sync.RWMutex
	singlePointOutlineWidth int

	fontMu        sync.RWMutex
	labelFont     FontDescriptor
	mpLabelFont   FontDescriptor
	kmlLabelScale float32

	autoColorThreshold   atomic.Int64
	symbolRenderMethod   atomic.Int64
	unitRenderMethod     atomic.Int64
	textRenderMethod     atomic.Int64
	symbologyStandard    atomic.Int64
	ocmType              atomic.Int64
	deviceDPI            atomic.Int64
	useLineInterpolation atomic.Bool
	autoCollapse         atomic.Bool
	centerOnHQStaff      atomic.Bool
	scaleEchelon         atomic.Bool
	affiliationAsLabel   atomic.Bool

	catalog *fonts.Catalog
	logger  Logger
}

type Option func(*Registry)

// WithLogger sets where font failures are reported.
func WithLogger(logger Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithFontCatalog sets the catalog fonts are resolved against.
func WithFontCatalog(catalog *fonts.Catalog) Option {
	return func(r *Registry) {
		if catalog != nil {
			r.catalog = catalog
		}
	}
}

// New returns a registry holding the default settings.
func New(opts ...Option) *Registry {
	white := color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	r := &Registry{
		textBackgroundMethod:    DefaultTextBackgroundMethod,
		textOutlineWidth:        OutlineWidthForOutlineQuick,
		labelBackground:         &white,
		singlePointOutlineWidth: DefaultSinglePointSymbolOutlineWidth,
		labelFont: FontDescriptor{
			Family:  DefaultFontFamily,
			Style:   DefaultFontStyle,
			Size:    DefaultFontSize,
			Kerning: KerningOff,
		},
		mpLabelFont: FontDescriptor{
			Family: DefaultFontFamily,
			Style:  DefaultFontStyle,
			Size:   DefaultFontSize,
		},
		kmlLabelScale: 1.0,
	}
	r.autoColorThreshold.Store(DefaultTextBackgroundAutoColorThreshold)
	r.symbolRenderMethod.Store(int64(RenderNative))
	r.unitRenderMethod.Store(int64(RenderNative))
	r.textRenderMethod.Store(int64(RenderNative))
	r.symbologyStandard.Store(int64(Symbology2525B))
	r.ocmType.Store(int64(OCMBar))
	r.deviceDPI.Store(DefaultDeviceDPI)
	r.useLineInterpolation.Store(true)
	r.autoCollapse.Store(true)
	r.centerOnHQStaff.Store(true)
	r.scaleEchelon.Store(false)
	r.affiliationAsLabel.Store(true)

	for _, opt := range opts {
		opt(r)
	}
	if r.catalog == nil {
		r.catalog = fonts.Default()
	}
	if r.logger == nil {
		r.logger = logging.Base()
	}
	return r
}

var (
	instanceOnce sync.Once
	instance     *Registry
)

// GetInstance returns the process-wide registry, creating it on first use.
func GetInstance() *Registry {
	instanceOnce.Do(func() {
		instance = New()
	})
	return instance
}

// SetTextBackgroundMethod sets the policy. Outline and OutlineQuick also
// reset the outline width to their own default; other policies leave it.
func (r *Registry) SetTextBackgroundMethod(method TextBackgroundMethod) {
	r.textMu.Lock()
	r.textBackgroundMethod = method
	switch method {
	case TextBackgroundOutline:
		r.textOutlineWidth = OutlineWidthForOutline
	case TextBackgroundOutlineQuick:
		r.textOutlineWidth = OutlineWidthForOutlineQuick
	}
	r.textMu.Unlock()
}

func (r *Registry) TextBackgroundMethod() TextBackgroundMethod {
	r.textMu.RLock()
	defer r.textMu.RUnlock()
	return r.textBackgroundMethod
}

func (r *Registry) SetTextOutlineWidth(width int) {
	r.textMu.Lock()
	r.textOutlineWidth = width
	r.textMu.Unlock()
}

func (r *Registry) TextOutlineWidth() int {
	r.textMu.RLock()
	defer r.textMu.RUnlock()
	return r.textOutlineWidth
}

// TextBackground reads the policy and outline width together.
func (r *Registry) TextBackground() (TextBackgroundMethod, int) {
	r.textMu.RLock()
	defer r.textMu.RUnlock()
	return r.textBackgroundMethod, r.textOutlineWidth
}

// SetTextBackgroundAutoColorThreshold sets the luminance (0-255) above
// which text gets a black rather than white outline or fill.
func (r *Registry) SetTextBackgroundAutoColorThreshold(value int) {
	r.autoColorThreshold.Store(int64(value))
}

func (r *Registry) TextBackgroundAutoColorThreshold() int {
	return int(r.autoColorThreshold.Load())
}

func toRGBA(c color.Color) *color.RGBA {
	if c == nil {
		return nil
	}
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	return &rgba
}

func fromRGBA(c *color.RGBA) (color.RGBA, bool) {
	if c == nil {
		return color.RGBA{}, false
	}
	return *c, true
}

// SetLabelForegroundColor sets the label text color. nil means labels use
// the symbol's line color.
func (r *Registry) SetLabelForegroundColor(c color.Color) {
	rgba := toRGBA(c)
	r.colorMu.Lock()
	r.labelForeground = rgba
	r.colorMu.Unlock()
}

func (r *Registry) LabelForegroundColor() (color.RGBA, bool) {
	r.colorMu.RLock()
	defer r.colorMu.RUnlock()
	return fromRGBA(r.labelForeground)
}

// SetLabelBackgroundColor sets the outline/fill color. nil means black or
// white is picked per label from the auto color threshold.
func (r *Registry) SetLabelBackgroundColor(c color.Color) {
	rgba := toRGBA(c)
	r.colorMu.Lock()
	r.labelBackground = rgba
	r.colorMu.Unlock()
}

func (r *Registry) LabelBackgroundColor() (color.RGBA, bool) {
	r.colorMu.RLock()
	defer r.colorMu.RUnlock()
	return fromRGBA(r.labelBackground)
}

func (r *Registry) SetSymbolRenderMethod(method RenderMethod) {
	r.symbolRenderMethod.Store(int64(method))
}

func (r *Registry) SymbolRenderMethod() RenderMethod {
	return RenderMethod(r.symbolRenderMethod.Load())
}

func (r *Registry) SetUnitRenderMethod(method RenderMethod) {
	r.unitRenderMethod.Store(int64(method))
}

func (r *Registry) UnitRenderMethod() RenderMethod {
	return RenderMethod(r.unitRenderMethod.Load())
}

func (r *Registry) SetTextRenderMethod(method RenderMethod) {
	r.textRenderMethod.Store(int64(method))
}

func (r *Registry) TextRenderMethod() RenderMethod {
	return RenderMethod(r.textRenderMethod.Load())
}

func (r *Registry) SetSymbologyStandard(standard SymbologyStandard) {
	r.symbologyStandard.Store(int64(standard))
}

func (r *Registry) SymbologyStandard() SymbologyStandard {
	return SymbologyStandard(r.symbologyStandard.Load())
}

func (r *Registry) SetOperationalConditionModifierType(value OCMType) {
	r.ocmType.Store(int64(value))
}

func (r *Registry) OperationalConditionModifierType() OCMType {
	return OCMType(r.ocmType.Load())
}

// SetUseLineInterpolation controls whether decorated lines may drop or
// insert points to keep their ornament spacing.
func (r *Registry) SetUseLineInterpolation(value bool) { r.useLineInterpolation.Store(value) }

func (r *Registry) UseLineInterpolation() bool { return r.useLineInterpolation.Load() }

func (r *Registry) SetDeviceDPI(value int) { r.deviceDPI.Store(int64(value)) }

func (r *Registry) DeviceDPI() int { return int(r.deviceDPI.Load()) }

func (r *Registry) SetAutoCollapseModifiers(value bool) { r.autoCollapse.Store(value) }

func (r *Registry) AutoCollapseModifiers() bool { return r.autoCollapse.Load() }

func (r *Registry) SetSinglePointSymbolOutlineWidth(width int) {
	r.outlineMu.Lock()
	r.singlePointOutlineWidth = width
	r.outlineMu.Unlock()
}

func (r *Registry) SinglePointSymbolOutlineWidth() int {
	r.outlineMu.RLock()
	defer r.outlineMu.RUnlock()
	return r.singlePointOutlineWidth
}

func (r *Registry) SetCenterOnHQStaff(value bool) { r.centerOnHQStaff.Store(value) }

func (r *Registry) CenterOnHQStaff() bool { return r.centerOnHQStaff.Load() }

// SetScaleEchelon controls whether echelon modifiers scale with the symbol.
func (r *Registry) SetScaleEchelon(value bool) { r.scaleEchelon.Store(value) }

func (r *Registry) ScaleEchelon() bool { return r.scaleEchelon.Load() }

func (r *Registry) SetDrawAffiliationModifierAsLabel(value bool) {
	r.affiliationAsLabel.Store(value)
}

func (r *Registry) DrawAffiliationModifierAsLabel() bool { return r.affiliationAsLabel.Load() }

// SetLabelFont sets the label font with kerning off and loose tracking.
func (r *Registry) SetLabelFont(name string, style FontStyle, size int) {
	r.fontMu.Lock()
	r.labelFont = FontDescriptor{
		Family:   name,
		Style:    style,
		Size:     size,
		Kerning:  KerningOff,
		Tracking: TrackingLoose,
	}
	r.fontMu.Unlock()
}

// SetLabelFontAttributes sets the label font with explicit kerning and
// tracking.
func (r *Registry) SetLabelFontAttributes(name string, style FontStyle, size int, kerning bool, tracking float32) {
	k := KerningOff
	if kerning {
		k = KerningOn
	}
	r.fontMu.Lock()
	r.labelFont = FontDescriptor{
		Family:   name,
		Style:    style,
		Size:     size,
		Kerning:  k,
		Tracking: tracking,
	}
	r.fontMu.Unlock()
}

func (r *Registry) LabelFontDescriptor() FontDescriptor {
	r.fontMu.RLock()
	defer r.fontMu.RUnlock()
	return r.labelFont
}

func (r *Registry) LabelFontName() string      { return r.LabelFontDescriptor().Family }
func (r *Registry) LabelFontStyle() FontStyle  { return r.LabelFontDescriptor().Style }
func (r *Registry) LabelFontSize() int         { return r.LabelFontDescriptor().Size }
func (r *Registry) LabelFontKerning() Kerning  { return r.LabelFontDescriptor().Kerning }
func (r *Registry) LabelFontTracking() float32 { return r.LabelFontDescriptor().Tracking }

// SetMPLabelFont sets the multi-point label font and resets the KML label
// scale to 1.
func (r *Registry) SetMPLabelFont(name string, style FontStyle, size int) {
	r.fontMu.Lock()
	r.mpLabelFont = FontDescriptor{Family: name, Style: style, Size: size}
	r.kmlLabelScale = 1.0
	r.fontMu.Unlock()
}

// SetMPLabelFontScaled stores ScaledFontSize(size, scale) and records scale
// as the KML label scale.
func (r *Registry) SetMPLabelFontScaled(name string, style FontStyle, size int, scale float32) {
	scaled := ScaledFontSize(size, scale)
	r.fontMu.Lock()
	r.mpLabelFont = FontDescriptor{Family: name, Style: style, Size: scaled}
	r.kmlLabelScale = scale
	r.fontMu.Unlock()
}

func (r *Registry) MPLabelFontDescriptor() FontDescriptor {
	r.fontMu.RLock()
	defer r.fontMu.RUnlock()
	return r.mpLabelFont
}

func (r *Registry) KMLLabelScale() float32 {
	r.fontMu.RLock()
	defer r.fontMu.RUnlock()
	return r.kmlLabelScale
}

// ScaledFontSize rounds size*scale to the nearest integer, halves rounding
// up. Results saturate at the int32 range and NaN gives 0.
func ScaledFontSize(size int, scale float32) int {
	x := float64(float32(size) * scale)
	switch {
	case math.IsNaN(x):
		return 0
	case x >= math.MaxInt32:
		return math.MaxInt32
	case x <= math.MinInt32:
		return math.MinInt32
	}
	return int(math.Floor(x + 0.5))
}
