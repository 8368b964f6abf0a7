package web

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	EnvListenAddr  = "RENDERSETTINGS_LISTEN"
	EnvDevMode     = "RENDERSETTINGS_DEV"
	EnvPreviewRate = "RENDERSETTINGS_PREVIEW_RATE"

	DefaultListenAddr = "127.0.0.1:8090"
)

// ServerConfig is the part of the server setup taken from the environment.
// Command line flags override it.
type ServerConfig struct {
	ListenAddr string
	DevMode    bool

	// PreviewRequestsPerMinute follows RouterConfig: zero selects the default.
	PreviewRequestsPerMinute int
}

func DefaultServerConfigFromEnv(defaultListenAddr string) (ServerConfig, error) {
	cfg := ServerConfig{ListenAddr: defaultListenAddr}
	if addr := strings.TrimSpace(os.Getenv(EnvListenAddr)); addr != "" {
		cfg.ListenAddr = addr
	}

	var err error
	if cfg.DevMode, err = envBool(EnvDevMode); err != nil {
		return ServerConfig{}, err
	}
	if cfg.PreviewRequestsPerMinute, err = envInt(EnvPreviewRate); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

func envBool(key string) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean (got %q): %w", key, raw, err)
	}
	return v, nil
}

func envInt(key string) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer (got %q): %w", key, raw, err)
	}
	return v, nil
}
