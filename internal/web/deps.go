package web

import (
	"github.com/rook-computer/rendersettings/internal/fonts"
	"github.com/rook-computer/rendersettings/internal/settings"
)

// Logger matches the component-tagged shape of logging.Logger.
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Infof(string, string, ...interface{})  {}
func (noopLogger) Errorf(string, string, ...interface{}) {}

// APIV1Deps is what the API reads and writes.
type APIV1Deps struct {
	Registry *settings.Registry
	Fonts    *fonts.Catalog
	Logger   Logger
}

func (d APIV1Deps) withDefaults() APIV1Deps {
	out := d
	if out.Registry == nil {
		out.Registry = settings.GetInstance()
	}
	if out.Fonts == nil {
		out.Fonts = fonts.Default()
	}
	if out.Logger == nil {
		out.Logger = noopLogger{}
	}
	return out
}
