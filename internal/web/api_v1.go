package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"gopkg.in/yaml.v3"

	"github.com/rook-computer/rendersettings/internal/metrics"
	"github.com/rook-computer/rendersettings/internal/profile"
	"github.com/rook-computer/rendersettings/internal/render"
	"github.com/rook-computer/rendersettings/internal/settings"
)

const (
	maxProfileBytes = 1 << 20
	maxPreviewScale = 16
	maxPreviewText  = 256
)

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type fontDescriptor struct {
	Family   string  `json:"family"`
	Style    string  `json:"style"`
	Size     int     `json:"size"`
	Kerning  bool    `json:"kerning"`
	Tracking float32 `json:"tracking"`
}

type resolvedFont struct {
	Requested fontDescriptor `json:"requested"`
	Resolved  fontDescriptor `json:"resolved"`
	Fallback  bool           `json:"fallback"`
	Error     string         `json:"error,omitempty"`
}

type resolvedFontsResponse struct {
	Label      resolvedFont `json:"label"`
	MultiPoint resolvedFont `json:"multi_point"`
	KMLScale   float32      `json:"kml_scale"`
}

func apiV1Router(cfg RouterConfig) http.Handler {
	deps := cfg.Deps.withDefaults()
	previews := newPreviewCache(previewCacheTTL, previewCacheMaxItems)
	r := chi.NewRouter()
	r.Get("/settings", func(w http.ResponseWriter, r *http.Request) { handleGetSettings(w, r, deps) })
	r.Put("/settings", func(w http.ResponseWriter, r *http.Request) { handlePutSettings(w, r, deps) })
	r.Get("/settings/qr", func(w http.ResponseWriter, r *http.Request) { handleSettingsQR(w, r, deps) })
	r.Get("/fonts", func(w http.ResponseWriter, r *http.Request) { handleFonts(w, r, deps) })
	r.Get("/fonts/resolved", func(w http.ResponseWriter, r *http.Request) { handleResolvedFonts(w, r, deps) })
	r.With(previewLimit(cfg.PreviewRequestsPerMinute)...).
		Get("/preview", func(w http.ResponseWriter, r *http.Request) { handlePreview(w, r, deps, previews) })
	return r
}

func previewLimit(perMinute int) []func(http.Handler) http.Handler {
	if perMinute < 0 {
		return nil
	}
	if perMinute == 0 {
		perMinute = DefaultPreviewRequestsPerMinute
	}
	return []func(http.Handler) http.Handler{
		httprate.Limit(
			perMinute,
			time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Retry-After", "60")
				writeAPIError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "too many preview requests")
			}),
		),
	}
}

func handleGetSettings(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	writeSettings(w, r, deps, http.StatusOK)
}

func writeSettings(w http.ResponseWriter, r *http.Request, deps APIV1Deps, status int) {
	p := profile.FromSnapshot(deps.Registry.Snapshot())
	if r.URL.Query().Get("format") == "yaml" {
		out, err := yaml.Marshal(p)
		if err != nil {
			writeAPIError(w, http.StatusInternalServerError, "encode_failed", err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write(out)
		return
	}
	writeJSON(w, status, p)
}

// handlePutSettings applies a partial profile. Fields left out keep their
// current value; an invalid profile changes nothing.
func handlePutSettings(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	body := http.MaxBytesReader(w, r.Body, maxProfileBytes)
	p, err := decodeProfile(r.Header.Get("Content-Type"), body)
	if err != nil {
		var unsupported *unsupportedMediaTypeError
		if errors.As(err, &unsupported) {
			writeAPIError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", err.Error())
			return
		}
		writeAPIError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	err = profile.Apply(deps.Registry, p)
	metrics.ObserveProfileApply("api", err)
	if err != nil {
		deps.Logger.Errorf("web", "rejected profile update: %v", err)
		writeAPIError(w, http.StatusUnprocessableEntity, "invalid_profile", err.Error())
		return
	}
	deps.Logger.Infof("web", "applied profile update")
	writeSettings(w, r, deps, http.StatusOK)
}

type unsupportedMediaTypeError struct{ mediaType string }

func (e *unsupportedMediaTypeError) Error() string {
	return fmt.Sprintf("unsupported content type %q", e.mediaType)
}

func decodeProfile(contentType string, body io.Reader) (*profile.Profile, error) {
	mediaType := "application/json"
	if contentType != "" {
		parsed, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			return nil, fmt.Errorf("content type: %w", err)
		}
		mediaType = parsed
	}

	var p profile.Profile
	switch mediaType {
	case "application/json":
		dec := json.NewDecoder(body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	case "application/yaml", "application/x-yaml", "text/yaml":
		dec := yaml.NewDecoder(body)
		dec.KnownFields(true)
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return nil, &unsupportedMediaTypeError{mediaType: mediaType}
	}
	return &p, nil
}

// handleSettingsQR returns the effective settings as a QR code holding the
// profile in compact JSON.
func handleSettingsQR(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	size, err := intParam(r.URL.Query().Get("size"), 0, 0, 2048)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_size", err.Error())
		return
	}
	payload, err := json.Marshal(profile.FromSnapshot(deps.Registry.Snapshot()))
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, "encode_failed", err.Error())
		return
	}
	img, err := render.QRCode(payload, size)
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, "qr_failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := render.WritePNG(w, img); err != nil {
		deps.Logger.Errorf("web", "qr write failed: %v", err)
	}
}

func handleFonts(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	writeJSON(w, http.StatusOK, deps.Fonts.Families())
}

func handleResolvedFonts(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	reg := deps.Registry
	writeJSON(w, http.StatusOK, resolvedFontsResponse{
		Label:      resolve(reg.LabelFontDescriptor(), reg.ResolveLabelFont, reg.LabelFont),
		MultiPoint: resolve(reg.MPLabelFontDescriptor(), reg.ResolveMPLabelFont, reg.MPLabelFont),
		KMLScale:   reg.KMLLabelScale(),
	})
}

func resolve(requested settings.FontDescriptor, try func() (settings.Font, error), fallback func() settings.Font) resolvedFont {
	out := resolvedFont{Requested: toFontDescriptor(requested)}
	f, err := try()
	if err != nil {
		out.Fallback = true
		out.Error = err.Error()
		f = fallback()
	}
	out.Resolved = toFontDescriptor(f.Descriptor)
	return out
}

func toFontDescriptor(d settings.FontDescriptor) fontDescriptor {
	return fontDescriptor{
		Family:   d.Family,
		Style:    d.Style.String(),
		Size:     d.Size,
		Kerning:  d.Kerning == settings.KerningOn,
		Tracking: d.Tracking,
	}
}

// handlePreview renders GET /preview?text=...&scale=&padding=&line_color=&canvas=
// as a PNG.
func handlePreview(w http.ResponseWriter, r *http.Request, deps APIV1Deps, previews *previewCache) {
	q := r.URL.Query()
	text := q.Get("text")
	if text == "" {
		writeAPIError(w, http.StatusBadRequest, "missing_text", "text is required")
		return
	}
	if len(text) > maxPreviewText {
		writeAPIError(w, http.StatusBadRequest, "text_too_long", fmt.Sprintf("text longer than %d bytes", maxPreviewText))
		return
	}
	scale, err := intParam(q.Get("scale"), 1, 1, maxPreviewScale)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_scale", err.Error())
		return
	}
	padding, err := intParam(q.Get("padding"), render.DefaultPadding, 0, 256)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_padding", err.Error())
		return
	}
	opts := render.Options{Padding: padding}
	if raw := q.Get("line_color"); raw != "" {
		c, err := profile.ParseColor(raw)
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid_line_color", err.Error())
			return
		}
		if c != nil {
			opts.LineColor = *c
		}
	}
	if raw := q.Get("canvas"); raw != "" {
		c, err := profile.ParseColor(raw)
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid_canvas", err.Error())
			return
		}
		if c != nil {
			opts.Canvas = *c
		}
	}

	settingsJSON, err := json.Marshal(profile.FromSnapshot(deps.Registry.Snapshot()))
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, "encode_failed", err.Error())
		return
	}
	key := previewKey(settingsJSON, text, scale, padding, opts.LineColor, opts.Canvas)
	if cached, ok := previews.Get(key); ok {
		writePNGBytes(w, cached, "hit")
		return
	}

	renderer := render.NewLabelRenderer(deps.Registry)
	renderer.Logger = deps.Logger
	img, err := renderer.Render(text, opts)
	if errors.Is(err, render.ErrLabelTooLarge) {
		writeAPIError(w, http.StatusUnprocessableEntity, "label_too_large", err.Error())
		return
	}
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, "render_failed", err.Error())
		return
	}
	var buf bytes.Buffer
	if err := render.WritePNG(&buf, render.Scale(img, scale)); err != nil {
		writeAPIError(w, http.StatusInternalServerError, "encode_failed", err.Error())
		return
	}
	metrics.PreviewsRendered.WithLabelValues(deps.Registry.TextBackgroundMethod().String()).Inc()
	previews.Set(key, buf.Bytes())
	writePNGBytes(w, buf.Bytes(), "miss")
}

func writePNGBytes(w http.ResponseWriter, data []byte, cacheStatus string) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Preview-Cache", cacheStatus)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

func intParam(raw string, def, lo, hi int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%d is outside [%d, %d]", v, lo, hi)
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Error: code, Message: message})
}
