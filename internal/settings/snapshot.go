package settings

import "image/color"

// Snapshot is a copy of every setting. Fields within one locked group
// (policy and outline width, the two label colors, the font descriptors)
// are consistent with each other; different groups may come from
// different moments if writers are active.
type Snapshot struct {
	TextBackgroundMethod             TextBackgroundMethod
	TextOutlineWidth                 int
	TextBackgroundAutoColorThreshold int
	LabelForeground                  *color.RGBA // nil: use the symbol line color
	LabelBackground                  *color.RGBA // nil: pick black or white automatically
	SymbolRenderMethod               RenderMethod
	UnitRenderMethod                 RenderMethod
	TextRenderMethod                 RenderMethod
	SymbologyStandard                SymbologyStandard
	OCMType                          OCMType
	UseLineInterpolation             bool
	DeviceDPI                        int
	AutoCollapseModifiers            bool
	SinglePointSymbolOutlineWidth    int
	CenterOnHQStaff                  bool
	ScaleEchelon                     bool
	DrawAffiliationModifierAsLabel   bool
	LabelFont                        FontDescriptor
	MPLabelFont                      FontDescriptor
	KMLLabelScale                    float32
}

func (r *Registry) Snapshot() Snapshot {
	s := Snapshot{
		TextBackgroundAutoColorThreshold: r.TextBackgroundAutoColorThreshold(),
		SymbolRenderMethod:               r.SymbolRenderMethod(),
		UnitRenderMethod:                 r.UnitRenderMethod(),
		TextRenderMethod:                 r.TextRenderMethod(),
		SymbologyStandard:                r.SymbologyStandard(),
		OCMType:                          r.OperationalConditionModifierType(),
		UseLineInterpolation:             r.UseLineInterpolation(),
		DeviceDPI:                        r.DeviceDPI(),
		AutoCollapseModifiers:            r.AutoCollapseModifiers(),
		SinglePointSymbolOutlineWidth:    r.SinglePointSymbolOutlineWidth(),
		CenterOnHQStaff:                  r.CenterOnHQStaff(),
		ScaleEchelon:                     r.ScaleEchelon(),
		DrawAffiliationModifierAsLabel:   r.DrawAffiliationModifierAsLabel(),
	}
	s.TextBackgroundMethod, s.TextOutlineWidth = r.TextBackground()

	r.colorMu.RLock()
	if r.labelForeground != nil {
		fg := *r.labelForeground
		s.LabelForeground = &fg
	}
	if r.labelBackground != nil {
		bg := *r.labelBackground
		s.LabelBackground = &bg
	}
	r.colorMu.RUnlock()

	r.fontMu.RLock()
	s.LabelFont = r.labelFont
	s.MPLabelFont = r.mpLabelFont
	s.KMLLabelScale = r.kmlLabelScale
	r.fontMu.RUnlock()
	return s
}
