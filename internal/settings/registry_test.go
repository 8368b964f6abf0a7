package settings

import (
	"image/color"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/rook-computer/rendersettings/internal/logging"
)

func newTestRegistry() *Registry {
	return New(WithLogger(logging.Nop()))
}

func TestNew_Defaults(t *testing.T) {
	r := newTestRegistry()

	assert.Equal(t, TextBackgroundOutlineQuick, r.TextBackgroundMethod())
	assert.Equal(t, 2, r.TextOutlineWidth())
	assert.Equal(t, 160, r.TextBackgroundAutoColorThreshold())
	assert.Equal(t, 90, r.DeviceDPI())
	assert.True(t, r.UseLineInterpolation())
	assert.True(t, r.AutoCollapseModifiers())
	assert.True(t, r.CenterOnHQStaff())
	assert.False(t, r.ScaleEchelon())
	assert.True(t, r.DrawAffiliationModifierAsLabel())
	assert.Equal(t, 1, r.SinglePointSymbolOutlineWidth())
	assert.Equal(t, RenderNative, r.SymbolRenderMethod())
	assert.Equal(t, RenderNative, r.UnitRenderMethod())
	assert.Equal(t, RenderNative, r.TextRenderMethod())
	assert.Equal(t, Symbology2525B, r.SymbologyStandard())
	assert.Equal(t, OCMBar, r.OperationalConditionModifierType())

	_, ok := r.LabelForegroundColor()
	assert.False(t, ok, "foreground inherits the line color by default")
	bg, ok := r.LabelBackgroundColor()
	require.True(t, ok)
	assert.Equal(t, color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}, bg)

	assert.Equal(t, FontDescriptor{Family: "arial", Style: FontBold, Size: 12, Kerning: KerningOff}, r.LabelFontDescriptor())
	assert.Equal(t, FontDescriptor{Family: "arial", Style: FontBold, Size: 12}, r.MPLabelFontDescriptor())
	assert.Equal(t, float32(1.0), r.KMLLabelScale())
}

func TestGetInstance_ConcurrentCallersShareOneInstance(t *testing.T) {
	const callers = 64
	start := make(chan struct{})
	results := make([]*Registry, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i] = GetInstance()
		}(i)
	}
	close(start)
	wg.Wait()

	require.NotNil(t, results[0])
	for _, got := range results {
		assert.Same(t, results[0], got)
	}
	assert.Same(t, results[0], GetInstance())
}

func TestSetTextBackgroundMethod_DerivesOutlineWidth(t *testing.T) {
	r := newTestRegistry()

	r.SetTextBackgroundMethod(TextBackgroundOutline)
	assert.Equal(t, 4, r.TextOutlineWidth())

	r.SetTextOutlineWidth(7)
	assert.Equal(t, 7, r.TextOutlineWidth())

	r.SetTextBackgroundMethod(TextBackgroundColorFill)
	assert.Equal(t, 7, r.TextOutlineWidth())

	r.SetTextBackgroundMethod(TextBackgroundNone)
	assert.Equal(t, 7, r.TextOutlineWidth())

	r.SetTextBackgroundMethod(TextBackgroundOutlineQuick)
	method, width := r.TextBackground()
	assert.Equal(t, TextBackgroundOutlineQuick, method)
	assert.Equal(t, 2, width)
}

func TestSetMPLabelFontScaled(t *testing.T) {
	r := newTestRegistry()

	r.SetMPLabelFontScaled("times", FontBold, 10, 2.0)
	assert.Equal(t, 20, r.MPLabelFontDescriptor().Size)
	assert.Equal(t, float32(2.0), r.KMLLabelScale())

	r.SetMPLabelFont("times", FontBold, 10)
	assert.Equal(t, 10, r.MPLabelFontDescriptor().Size)
	assert.Equal(t, float32(1.0), r.KMLLabelScale())

	r.SetMPLabelFontScaled("times", FontPlain, 9, 1.5)
	assert.Equal(t, 14, r.MPLabelFontDescriptor().Size, "13.5 rounds to 14")
	assert.Equal(t, FontPlain, r.MPLabelFontDescriptor().Style)
}

func TestScaledFontSize(t *testing.T) {
	inf := float32(math.Inf(1))
	cases := []struct {
		size  int
		scale float32
		want  int
	}{
		{10, 2, 20},
		{5, 0.5, 3},
		{-5, 0.5, -2},
		{-7, 0.5, -3},
		{10, inf, math.MaxInt32},
		{10, -inf, math.MinInt32},
		{0, inf, 0},
		{10, float32(math.NaN()), 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ScaledFontSize(c.size, c.scale), "%d*%v", c.size, c.scale)
	}

	r := newTestRegistry()
	r.SetMPLabelFontScaled("times", FontBold, 10, inf)
	assert.Equal(t, math.MaxInt32, r.MPLabelFontDescriptor().Size)
}

func TestSetLabelFontAttributes(t *testing.T) {
	r := newTestRegistry()

	r.SetLabelFontAttributes("arial", FontBold, 12, false, 0.0)
	assert.Equal(t, KerningOff, r.LabelFontKerning())
	assert.Equal(t, float32(0.0), r.LabelFontTracking())

	r.SetLabelFontAttributes("arial", FontBold, 12, true, 0.1)
	assert.Equal(t, KerningOn, r.LabelFontKerning())
	assert.Equal(t, float32(0.1), r.LabelFontTracking())
}

func TestSetLabelFont_ResetsKerningAndTracking(t *testing.T) {
	r := newTestRegistry()
	r.SetLabelFontAttributes("arial", FontBold, 12, true, 0.3)

	r.SetLabelFont("courier", FontItalic, 14)

	assert.Equal(t, "courier", r.LabelFontName())
	assert.Equal(t, FontItalic, r.LabelFontStyle())
	assert.Equal(t, 14, r.LabelFontSize())
	assert.Equal(t, KerningOff, r.LabelFontKerning())
	assert.Equal(t, TrackingLoose, r.LabelFontTracking())
}

func TestSetters_StoreOutOfRangeValuesAsGiven(t *testing.T) {
	r := newTestRegistry()

	r.SetDeviceDPI(-5)
	r.SetTextBackgroundAutoColorThreshold(999)
	r.SetTextOutlineWidth(-3)
	r.SetSinglePointSymbolOutlineWidth(-1)

	assert.Equal(t, -5, r.DeviceDPI())
	assert.Equal(t, 999, r.TextBackgroundAutoColorThreshold())
	assert.Equal(t, -3, r.TextOutlineWidth())
	assert.Equal(t, -1, r.SinglePointSymbolOutlineWidth())
}

func TestScalarSetters(t *testing.T) {
	r := newTestRegistry()

	r.SetSymbolRenderMethod(RenderShapes)
	r.SetUnitRenderMethod(RenderShapes)
	r.SetTextRenderMethod(RenderShapes)
	r.SetSymbologyStandard(Symbology2525C)
	r.SetOperationalConditionModifierType(OCMSlash)
	r.SetUseLineInterpolation(false)
	r.SetAutoCollapseModifiers(false)
	r.SetCenterOnHQStaff(false)
	r.SetScaleEchelon(true)
	r.SetDrawAffiliationModifierAsLabel(false)
	r.SetSinglePointSymbolOutlineWidth(3)

	assert.Equal(t, RenderShapes, r.SymbolRenderMethod())
	assert.Equal(t, RenderShapes, r.UnitRenderMethod())
	assert.Equal(t, RenderShapes, r.TextRenderMethod())
	assert.Equal(t, Symbology2525C, r.SymbologyStandard())
	assert.Equal(t, OCMSlash, r.OperationalConditionModifierType())
	assert.False(t, r.UseLineInterpolation())
	assert.False(t, r.AutoCollapseModifiers())
	assert.False(t, r.CenterOnHQStaff())
	assert.True(t, r.ScaleEchelon())
	assert.False(t, r.DrawAffiliationModifierAsLabel())
	assert.Equal(t, 3, r.SinglePointSymbolOutlineWidth())
}

func TestLabelColors_NilClearsAndValuesAreCopies(t *testing.T) {
	r := newTestRegistry()

	r.SetLabelForegroundColor(color.RGBA{R: 10, G: 20, B: 30, A: 255})
	fg, ok := r.LabelForegroundColor()
	require.True(t, ok)
	fg.R = 200
	again, _ := r.LabelForegroundColor()
	assert.Equal(t, uint8(10), again.R)

	r.SetLabelBackgroundColor(nil)
	_, ok = r.LabelBackgroundColor()
	assert.False(t, ok)

	r.SetLabelBackgroundColor(color.Gray{Y: 0x80})
	bg, ok := r.LabelBackgroundColor()
	require.True(t, ok)
	assert.Equal(t, color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}, bg)

	snap := r.Snapshot()
	snap.LabelBackground.R = 0
	bg, _ = r.LabelBackgroundColor()
	assert.Equal(t, uint8(0x80), bg.R)
}

func TestSnapshot_ReflectsWrites(t *testing.T) {
	r := newTestRegistry()
	r.SetTextBackgroundMethod(TextBackgroundOutline)
	r.SetDeviceDPI(120)
	r.SetMPLabelFontScaled("courier", FontPlain, 8, 1.5)

	snap := r.Snapshot()
	assert.Equal(t, TextBackgroundOutline, snap.TextBackgroundMethod)
	assert.Equal(t, 4, snap.TextOutlineWidth)
	assert.Equal(t, 120, snap.DeviceDPI)
	assert.Equal(t, 12, snap.MPLabelFont.Size)
	assert.Equal(t, float32(1.5), snap.KMLLabelScale)
	assert.Nil(t, snap.LabelForeground)
}

func TestTextBackground_NeverTornUnderConcurrentWrites(t *testing.T) {
	r := newTestRegistry()
	const writes = 2000

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for w := 0; w < 2; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < writes; i++ {
				if (i+w)%2 == 0 {
					r.SetTextBackgroundMethod(TextBackgroundOutline)
				} else {
					r.SetTextBackgroundMethod(TextBackgroundOutlineQuick)
				}
			}
		}(w)
	}

	errs := make(chan string, 1)
	var readers sync.WaitGroup
	for i := 0; i < 4; i++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				method, width := r.TextBackground()
				if (method == TextBackgroundOutline && width != 4) || (method == TextBackgroundOutlineQuick && width != 2) {
					select {
					case errs <- method.String():
					default:
					}
					return
				}
			}
		}()
	}

	wg.Wait()
	close(stop)
	readers.Wait()

	select {
	case method := <-errs:
		t.Fatalf("observed torn policy/width pair for %s", method)
	default:
	}
}

func TestMPLabelFont_ScaleAndSizeNeverTorn(t *testing.T) {
	r := newTestRegistry()
	const writes = 2000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < writes; i++ {
			if i%2 == 0 {
				r.SetMPLabelFontScaled("times", FontBold, 10, 2.0)
			} else {
				r.SetMPLabelFont("courier", FontPlain, 7)
			}
		}
	}()

	for i := 0; i < writes; i++ {
		snap := r.Snapshot()
		switch snap.MPLabelFont.Family {
		case "times":
			require.Equal(t, 20, snap.MPLabelFont.Size)
			require.Equal(t, float32(2.0), snap.KMLLabelScale)
		case "courier":
			require.Equal(t, 7, snap.MPLabelFont.Size)
			require.Equal(t, float32(1.0), snap.KMLLabelScale)
		}
	}
	wg.Wait()
}

func TestProperty_OutlineWidthFollowsDerivationRule(t *testing.T) {
	methods := []TextBackgroundMethod{
		TextBackgroundNone, TextBackgroundColorFill, TextBackgroundOutline, TextBackgroundOutlineQuick,
	}
	rapid.Check(t, func(t *rapid.T) {
		r := newTestRegistry()
		wantMethod, wantWidth := TextBackgroundOutlineQuick, 2

		steps := rapid.IntRange(1, 50).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			if rapid.Bool().Draw(t, "setMethod") {
				m := rapid.SampledFrom(methods).Draw(t, "method")
				r.SetTextBackgroundMethod(m)
				wantMethod = m
				switch m {
				case TextBackgroundOutline:
					wantWidth = 4
				case TextBackgroundOutlineQuick:
					wantWidth = 2
				}
			} else {
				w := rapid.IntRange(-10, 50).Draw(t, "width")
				r.SetTextOutlineWidth(w)
				wantWidth = w
			}
			gotMethod, gotWidth := r.TextBackground()
			if gotMethod != wantMethod || gotWidth != wantWidth {
				t.Fatalf("got (%s, %d), want (%s, %d)", gotMethod, gotWidth, wantMethod, wantWidth)
			}
		}
	})
}

func TestProperty_LastWriteWins(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := newTestRegistry()
		dpis := rapid.SliceOfN(rapid.IntRange(-100, 1000), 1, 20).Draw(t, "dpis")
		thresholds := rapid.SliceOfN(rapid.IntRange(-10, 300), 1, 20).Draw(t, "thresholds")
		flags := rapid.SliceOfN(rapid.Bool(), 1, 20).Draw(t, "flags")

		for _, v := range dpis {
			r.SetDeviceDPI(v)
			if got := r.DeviceDPI(); got != v {
				t.Fatalf("DeviceDPI = %d, want %d", got, v)
			}
		}
		for _, v := range thresholds {
			r.SetTextBackgroundAutoColorThreshold(v)
		}
		for _, v := range flags {
			r.SetScaleEchelon(v)
		}

		if got := r.DeviceDPI(); got != dpis[len(dpis)-1] {
			t.Fatalf("DeviceDPI = %d, want %d", got, dpis[len(dpis)-1])
		}
		if got := r.TextBackgroundAutoColorThreshold(); got != thresholds[len(thresholds)-1] {
			t.Fatalf("threshold = %d, want %d", got, thresholds[len(thresholds)-1])
		}
		if got := r.ScaleEchelon(); got != flags[len(flags)-1] {
			t.Fatalf("ScaleEchelon = %v, want %v", got, flags[len(flags)-1])
		}
	})
}

func TestEnumParsing(t *testing.T) {
	for _, m := range []TextBackgroundMethod{TextBackgroundNone, TextBackgroundColorFill, TextBackgroundOutline, TextBackgroundOutlineQuick} {
		parsed, err := ParseTextBackgroundMethod(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}
	rm, err := ParseRenderMethod(" Native ")
	require.NoError(t, err)
	assert.Equal(t, RenderNative, rm)

	std, err := ParseSymbologyStandard("2525C")
	require.NoError(t, err)
	assert.Equal(t, Symbology2525C, std)

	ocm, err := ParseOCMType("slash")
	require.NoError(t, err)
	assert.Equal(t, OCMSlash, ocm)

	_, err = ParseTextBackgroundMethod("glow")
	require.Error(t, err)
	assert.Equal(t, "text_background(9)", TextBackgroundMethod(9).String())
}
