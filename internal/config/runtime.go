package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/awmpietro/quantum-dilemma/internal/narrative"
)

type Runtime struct {
	HTTPAddr      string `envconfig:"HTTP_ADDR" default:":8080"`
	CacheMaxItems int    `envconfig:"GRAPH_CACHE_MAX_ITEMS" default:"64"`
	ObsBuffer     int    `envconfig:"OBS_BUFFER" default:"4096"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding   string `envconfig:"LOG_ENCODING" default:"json"`
	// NarrativePath points at a DOT file; empty selects the embedded narrative.
	NarrativePath string   `envconfig:"NARRATIVE_PATH"`
	Palette       []string `envconfig:"PALETTE"`
}

func Load() (Runtime, error) {
	var cfg Runtime
	if err := envconfig.Process("", &cfg); err != nil {
		return Runtime{}, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.CacheMaxItems < 1 {
		return Runtime{}, fmt.Errorf("GRAPH_CACHE_MAX_ITEMS must be >= 1, got %d", cfg.CacheMaxItems)
	}
	if cfg.ObsBuffer < 1 {
		return Runtime{}, fmt.Errorf("OBS_BUFFER must be >= 1, got %d", cfg.ObsBuffer)
	}
	return cfg, nil
}

// Graph compiles the configured narrative, or returns the embedded one.
func (r Runtime) Graph() (*narrative.Graph, error) {
	if r.NarrativePath == "" {
		return narrative.Canonical()
	}
	raw, err := os.ReadFile(r.NarrativePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read narrative: %w", err)
	}
	return narrative.NewCompiler().Compile(string(raw))
}

// ColorPalette returns the configured palette, or the default one.
func (r Runtime) ColorPalette() (narrative.Palette, error) {
	if len(r.Palette) == 0 {
		return narrative.DefaultPalette, nil
	}
	colors := make([]string, 0, len(r.Palette))
	for _, c := range r.Palette {
		colors = append(colors, strings.TrimSpace(c))
	}
	return narrative.NewPalette(colors...)
}
