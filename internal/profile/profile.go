// Package profile loads render settings from a YAML file and applies them
// to a settings.Registry through its public setters.
package profile

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/viper"

	"github.com/rook-computer/rendersettings/internal/fonts"
	"github.com/rook-computer/rendersettings/internal/settings"
)

// EnvPrefix prefixes environment overrides, e.g.
// RENDERSETTINGS_RENDER_DEVICE_DPI=120.
const EnvPrefix = "RENDERSETTINGS"

// Profile holds optional overrides. Nil fields leave the registry as is.
type Profile struct {
	TextBackground TextBackgroundProfile `mapstructure:"text_background" yaml:"text_background" json:"text_background"`
	Labels         LabelsProfile         `mapstructure:"labels" yaml:"labels" json:"labels"`
	Render         RenderProfile         `mapstructure:"render" yaml:"render" json:"render"`
	Symbols        SymbolsProfile        `mapstructure:"symbols" yaml:"symbols" json:"symbols"`
	Fonts          FontsProfile          `mapstructure:"fonts" yaml:"fonts" json:"fonts"`
}

type TextBackgroundProfile struct {
	Method             *string `mapstructure:"method" yaml:"method,omitempty" json:"method,omitempty"` // none, color_fill, outline, outline_quick
	OutlineWidth       *int    `mapstructure:"outline_width" yaml:"outline_width,omitempty" json:"outline_width,omitempty"`
	AutoColorThreshold *int    `mapstructure:"auto_color_threshold" yaml:"auto_color_threshold,omitempty" json:"auto_color_threshold,omitempty"`
}

type LabelsProfile struct {
	Foreground         *string `mapstructure:"foreground" yaml:"foreground,omitempty" json:"foreground,omitempty"` // "#rrggbb" or "none"
	Background         *string `mapstructure:"background" yaml:"background,omitempty" json:"background,omitempty"`
	AffiliationAsLabel *bool   `mapstructure:"affiliation_as_label" yaml:"affiliation_as_label,omitempty" json:"affiliation_as_label,omitempty"`
}

type RenderProfile struct {
	Symbol            *string `mapstructure:"symbol" yaml:"symbol,omitempty" json:"symbol,omitempty"` // shapes or native
	Unit              *string `mapstructure:"unit" yaml:"unit,omitempty" json:"unit,omitempty"`
	Text              *string `mapstructure:"text" yaml:"text,omitempty" json:"text,omitempty"`
	DeviceDPI         *int    `mapstructure:"device_dpi" yaml:"device_dpi,omitempty" json:"device_dpi,omitempty"`
	LineInterpolation *bool   `mapstructure:"line_interpolation" yaml:"line_interpolation,omitempty" json:"line_interpolation,omitempty"`
}

type SymbolsProfile struct {
	Standard              *string `mapstructure:"standard" yaml:"standard,omitempty" json:"standard,omitempty"` // 2525b or 2525c
	OCMType               *string `mapstructure:"ocm_type" yaml:"ocm_type,omitempty" json:"ocm_type,omitempty"` // slash or bar
	AutoCollapseModifiers *bool   `mapstructure:"auto_collapse_modifiers" yaml:"auto_collapse_modifiers,omitempty" json:"auto_collapse_modifiers,omitempty"`
	OutlineWidth          *int    `mapstructure:"outline_width" yaml:"outline_width,omitempty" json:"outline_width,omitempty"`
	CenterOnHQStaff       *bool   `mapstructure:"center_on_hq_staff" yaml:"center_on_hq_staff,omitempty" json:"center_on_hq_staff,omitempty"`
	ScaleEchelon          *bool   `mapstructure:"scale_echelon" yaml:"scale_echelon,omitempty" json:"scale_echelon,omitempty"`
}

type FontsProfile struct {
	Label      *LabelFontProfile `mapstructure:"label" yaml:"label,omitempty" json:"label,omitempty"`
	MultiPoint *MPFontProfile    `mapstructure:"multi_point" yaml:"multi_point,omitempty" json:"multi_point,omitempty"`
}

// LabelFontProfile uses the short SetLabelFont form unless Kerning or
// Tracking is given.
type LabelFontProfile struct {
	Family   string   `mapstructure:"family" yaml:"family" json:"family"`
	Style    string   `mapstructure:"style" yaml:"style" json:"style"`
	Size     int      `mapstructure:"size" yaml:"size" json:"size"`
	Kerning  *bool    `mapstructure:"kerning" yaml:"kerning,omitempty" json:"kerning,omitempty"`
	Tracking *float32 `mapstructure:"tracking" yaml:"tracking,omitempty" json:"tracking,omitempty"`
}

type MPFontProfile struct {
	Family   string   `mapstructure:"family" yaml:"family" json:"family"`
	Style    string   `mapstructure:"style" yaml:"style" json:"style"`
	Size     int      `mapstructure:"size" yaml:"size" json:"size"`
	KMLScale *float32 `mapstructure:"kml_scale" yaml:"kml_scale,omitempty" json:"kml_scale,omitempty"`
}

// Load reads a YAML profile. Environment variables override keys present
// in the file.
func Load(path string) (*Profile, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}
	var p Profile
	if err := v.Unmarshal(&p); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", path, err)
	}
	return &p, nil
}

// Apply validates every named value in p and then writes the set fields to
// reg. Nothing is written when any value fails to parse. The background
// policy is written before an explicit outline width so the width wins.
func Apply(reg *settings.Registry, p *Profile) error {
	if p == nil {
		return nil
	}
	var (
		setters []func()
		errs    []error
	)
	add := func(fn func()) { setters = append(setters, fn) }

	tb := p.TextBackground
	if tb.Method != nil {
		if m, err := settings.ParseTextBackgroundMethod(*tb.Method); err != nil {
			errs = append(errs, fmt.Errorf("text_background.method: %w", err))
		} else {
			add(func() { reg.SetTextBackgroundMethod(m) })
		}
	}
	if tb.OutlineWidth != nil {
		w := *tb.OutlineWidth
		add(func() { reg.SetTextOutlineWidth(w) })
	}
	if tb.AutoColorThreshold != nil {
		v := *tb.AutoColorThreshold
		add(func() { reg.SetTextBackgroundAutoColorThreshold(v) })
	}

	if p.Labels.Foreground != nil {
		if c, err := ParseColor(*p.Labels.Foreground); err != nil {
			errs = append(errs, fmt.Errorf("labels.foreground: %w", err))
		} else {
			add(func() { reg.SetLabelForegroundColor(colorOrNil(c)) })
		}
	}
	if p.Labels.Background != nil {
		if c, err := ParseColor(*p.Labels.Background); err != nil {
			errs = append(errs, fmt.Errorf("labels.background: %w", err))
		} else {
			add(func() { reg.SetLabelBackgroundColor(colorOrNil(c)) })
		}
	}
	if v := p.Labels.AffiliationAsLabel; v != nil {
		b := *v
		add(func() { reg.SetDrawAffiliationModifierAsLabel(b) })
	}

	renderMethods := []struct {
		key   string
		value *string
		set   func(settings.RenderMethod)
	}{
		{"render.symbol", p.Render.Symbol, reg.SetSymbolRenderMethod},
		{"render.unit", p.Render.Unit, reg.SetUnitRenderMethod},
		{"render.text", p.Render.Text, reg.SetTextRenderMethod},
	}
	for _, rm := range renderMethods {
		if rm.value == nil {
			continue
		}
		m, err := settings.ParseRenderMethod(*rm.value)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", rm.key, err))
			continue
		}
		set := rm.set
		add(func() { set(m) })
	}
	if v := p.Render.DeviceDPI; v != nil {
		dpi := *v
		add(func() { reg.SetDeviceDPI(dpi) })
	}
	if v := p.Render.LineInterpolation; v != nil {
		b := *v
		add(func() { reg.SetUseLineInterpolation(b) })
	}

	sym := p.Symbols
	if sym.Standard != nil {
		if s, err := settings.ParseSymbologyStandard(*sym.Standard); err != nil {
			errs = append(errs, fmt.Errorf("symbols.standard: %w", err))
		} else {
			add(func() { reg.SetSymbologyStandard(s) })
		}
	}
	if sym.OCMType != nil {
		if o, err := settings.ParseOCMType(*sym.OCMType); err != nil {
			errs = append(errs, fmt.Errorf("symbols.ocm_type: %w", err))
		} else {
			add(func() { reg.SetOperationalConditionModifierType(o) })
		}
	}
	if v := sym.AutoCollapseModifiers; v != nil {
		b := *v
		add(func() { reg.SetAutoCollapseModifiers(b) })
	}
	if v := sym.OutlineWidth; v != nil {
		w := *v
		add(func() { reg.SetSinglePointSymbolOutlineWidth(w) })
	}
	if v := sym.CenterOnHQStaff; v != nil {
		b := *v
		add(func() { reg.SetCenterOnHQStaff(b) })
	}
	if v := sym.ScaleEchelon; v != nil {
		b := *v
		add(func() { reg.SetScaleEchelon(b) })
	}

	if lf := p.Fonts.Label; lf != nil {
		if style, err := fonts.ParseStyle(lf.Style); err != nil {
			errs = append(errs, fmt.Errorf("fonts.label.style: %w", err))
		} else if lf.Kerning == nil && lf.Tracking == nil {
			f := *lf
			add(func() { reg.SetLabelFont(f.Family, style, f.Size) })
		} else {
			f := *lf
			var kerning bool
			var tracking float32
			if f.Kerning != nil {
				kerning = *f.Kerning
			}
			if f.Tracking != nil {
				tracking = *f.Tracking
			}
			add(func() { reg.SetLabelFontAttributes(f.Family, style, f.Size, kerning, tracking) })
		}
	}
	if mf := p.Fonts.MultiPoint; mf != nil {
		if style, err := fonts.ParseStyle(mf.Style); err != nil {
			errs = append(errs, fmt.Errorf("fonts.multi_point.style: %w", err))
		} else if mf.KMLScale != nil {
			f, scale := *mf, *mf.KMLScale
			add(func() { reg.SetMPLabelFontScaled(f.Family, style, f.Size, scale) })
		} else {
			f := *mf
			add(func() { reg.SetMPLabelFont(f.Family, style, f.Size) })
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	for _, set := range setters {
		set()
	}
	return nil
}

func colorOrNil(c *color.RGBA) color.Color {
	if c == nil {
		return nil
	}
	return *c
}

// ParseColor parses "#rgb" or "#rrggbb". "none" and "" yield nil.
func ParseColor(s string) (*color.RGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return nil, nil
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, fmt.Errorf("parse color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return &color.RGBA{R: r, G: g, B: b, A: 0xFF}, nil
}

// FormatColor is the inverse of ParseColor.
func FormatColor(c *color.RGBA) string {
	if c == nil {
		return "none"
	}
	cf, ok := colorful.MakeColor(*c)
	if !ok {
		return "#000000"
	}
	return cf.Hex()
}

// FromSnapshot builds a profile with every field set.
func FromSnapshot(s settings.Snapshot) *Profile {
	str := func(v fmt.Stringer) *string { out := v.String(); return &out }
	intp := func(v int) *int { return &v }
	boolp := func(v bool) *bool { return &v }
	fg, bg := FormatColor(s.LabelForeground), FormatColor(s.LabelBackground)
	kerning := s.LabelFont.Kerning == settings.KerningOn
	tracking := s.LabelFont.Tracking

	return &Profile{
		TextBackground: TextBackgroundProfile{
			Method:             str(s.TextBackgroundMethod),
			OutlineWidth:       intp(s.TextOutlineWidth),
			AutoColorThreshold: intp(s.TextBackgroundAutoColorThreshold),
		},
		Labels: LabelsProfile{
			Foreground:         &fg,
			Background:         &bg,
			AffiliationAsLabel: boolp(s.DrawAffiliationModifierAsLabel),
		},
		Render: RenderProfile{
			Symbol:            str(s.SymbolRenderMethod),
			Unit:              str(s.UnitRenderMethod),
			Text:              str(s.TextRenderMethod),
			DeviceDPI:         intp(s.DeviceDPI),
			LineInterpolation: boolp(s.UseLineInterpolation),
		},
		Symbols: SymbolsProfile{
			Standard:              str(s.SymbologyStandard),
			OCMType:               str(s.OCMType),
			AutoCollapseModifiers: boolp(s.AutoCollapseModifiers),
			OutlineWidth:          intp(s.SinglePointSymbolOutlineWidth),
			CenterOnHQStaff:       boolp(s.CenterOnHQStaff),
			ScaleEchelon:          boolp(s.ScaleEchelon),
		},
		Fonts: FontsProfile{
			Label: &LabelFontProfile{
				Family:   s.LabelFont.Family,
				Style:    s.LabelFont.Style.String(),
				Size:     s.LabelFont.Size,
				Kerning:  &kerning,
				Tracking: &tracking,
			},
			MultiPoint: mpFontProfile(s.MPLabelFont, s.KMLLabelScale),
		},
	}
}

// mpFontProfile writes the multi-point font as the unscaled size plus
// kml_scale when applying that pair gives back the stored size. Otherwise
// the stored size is written alone and the scale is reported as 1.
func mpFontProfile(d settings.FontDescriptor, scale float32) *MPFontProfile {
	p := &MPFontProfile{Family: d.Family, Style: d.Style.String(), Size: d.Size}
	if scale == 1 || scale == 0 || math.IsNaN(float64(scale)) || math.IsInf(float64(scale), 0) {
		return p
	}
	u := math.Round(float64(d.Size) / float64(scale))
	if math.Abs(u) > math.MaxInt32 {
		return p
	}
	unscaled := int(u)
	if settings.ScaledFontSize(unscaled, scale) == d.Size {
		p.Size = unscaled
		p.KMLScale = &scale
	}
	return p
}
