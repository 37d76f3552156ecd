package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

type File struct {
	Version  int      `yaml:"version" json:"version"`
	Deck     Deck     `yaml:"deck" json:"deck"`
	Timing   Timing   `yaml:"timing,omitempty" json:"timing,omitempty"`
	Tooltips Tooltips `yaml:"tooltips,omitempty" json:"tooltips,omitempty"`
	Demos    []Demo   `yaml:"demos,omitempty" json:"demos,omitempty"`
}

type Deck struct {
	Name        string `yaml:"name" json:"name"`
	DemoSection string `yaml:"demo_section,omitempty" json:"demo_section,omitempty"`
}

// Timing holds the debounce and warmup delays in milliseconds. Zero values
// take the documented defaults so a minimal deck.yaml stays minimal.
type Timing struct {
	HoverGraceMS     int   `yaml:"hover_grace_ms,omitempty" json:"hover_grace_ms,omitempty"`
	HideDelayMS      int   `yaml:"hide_delay_ms,omitempty" json:"hide_delay_ms,omitempty"`
	PreloadStaggerMS []int `yaml:"preload_stagger_ms,omitempty" json:"preload_stagger_ms,omitempty"`
}

type Tooltips struct {
	AnchorClassPrefix string `yaml:"anchor_class_prefix,omitempty" json:"anchor_class_prefix,omitempty"`
	TooltipIDPrefix   string `yaml:"tooltip_id_prefix,omitempty" json:"tooltip_id_prefix,omitempty"`
	PairOffset        *int   `yaml:"pair_offset,omitempty" json:"pair_offset,omitempty"`
	DismissClass      string `yaml:"dismiss_class,omitempty" json:"dismiss_class,omitempty"`
	WideViewportMinPX int    `yaml:"wide_viewport_min_px,omitempty" json:"wide_viewport_min_px,omitempty"`
	ViewportMarginPX  int    `yaml:"viewport_margin_px,omitempty" json:"viewport_margin_px,omitempty"`
	FallbackWidthPX   int    `yaml:"fallback_width_px,omitempty" json:"fallback_width_px,omitempty"`
	FallbackHeightPX  int    `yaml:"fallback_height_px,omitempty" json:"fallback_height_px,omitempty"`
}

type Demo struct {
	ID             string `yaml:"id" json:"id"`
	EmbedURL       string `yaml:"embed_url" json:"embed_url"`
	PanelID        string `yaml:"panel_id" json:"panel_id"`
	TriggerPattern string `yaml:"trigger_pattern" json:"trigger_pattern"`
}

const (
	defaultHoverGraceMS      = 200
	defaultHideDelayMS       = 300
	defaultAnchorClassPrefix = "funnel-step-"
	defaultTooltipIDPrefix   = "info-"
	defaultPairOffset        = -1
	defaultDismissClass      = "info-close"
	defaultWideViewportMinPX = 1280
	defaultViewportMarginPX  = 10
	defaultFallbackWidthPX   = 240
	defaultFallbackHeightPX  = 180
)

func defaultPreloadStaggerMS() []int {
	return []int{500, 2000, 3500, 5000}
}

func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read config file %q: %w", path, err)
	}

	return Parse(data, path)
}

func Parse(data []byte, source string) (File, error) {
	var cfg File

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse YAML in %q: %w", source, err)
	}

	cfg.applyDefaults()
	if errs := cfg.Validate(); len(errs) > 0 {
		return cfg, fmt.Errorf("invalid config in %q: %s", source, strings.Join(errs, "; "))
	}
	return cfg, nil
}

func (cfg *File) applyDefaults() {
	if cfg.Timing.HoverGraceMS == 0 {
		cfg.Timing.HoverGraceMS = defaultHoverGraceMS
	}
	if cfg.Timing.HideDelayMS == 0 {
		cfg.Timing.HideDelayMS = defaultHideDelayMS
	}
	if len(cfg.Timing.PreloadStaggerMS) == 0 {
		cfg.Timing.PreloadStaggerMS = defaultPreloadStaggerMS()
	}
	if cfg.Tooltips.AnchorClassPrefix == "" {
		cfg.Tooltips.AnchorClassPrefix = defaultAnchorClassPrefix
	}
	if cfg.Tooltips.TooltipIDPrefix == "" {
		cfg.Tooltips.TooltipIDPrefix = defaultTooltipIDPrefix
	}
	if cfg.Tooltips.PairOffset == nil {
		off := defaultPairOffset
		cfg.Tooltips.PairOffset = &off
	}
	if cfg.Tooltips.DismissClass == "" {
		cfg.Tooltips.DismissClass = defaultDismissClass
	}
	if cfg.Tooltips.WideViewportMinPX == 0 {
		cfg.Tooltips.WideViewportMinPX = defaultWideViewportMinPX
	}
	if cfg.Tooltips.ViewportMarginPX == 0 {
		cfg.Tooltips.ViewportMarginPX = defaultViewportMarginPX
	}
	if cfg.Tooltips.FallbackWidthPX == 0 {
		cfg.Tooltips.FallbackWidthPX = defaultFallbackWidthPX
	}
	if cfg.Tooltips.FallbackHeightPX == 0 {
		cfg.Tooltips.FallbackHeightPX = defaultFallbackHeightPX
	}
}

func (cfg File) Validate() []string {
	var errs []string

	if cfg.Version != 1 {
		errs = append(errs, fmt.Sprintf("unsupported config version %d", cfg.Version))
	}
	if strings.TrimSpace(cfg.Deck.Name) == "" {
		errs = append(errs, "deck.name is required")
	}
	if cfg.Timing.HoverGraceMS < 0 {
		errs = append(errs, "timing.hover_grace_ms must not be negative")
	}
	if cfg.Timing.HideDelayMS < 0 {
		errs = append(errs, "timing.hide_delay_ms must not be negative")
	}
	for i, ms := range cfg.Timing.PreloadStaggerMS {
		if ms < 0 {
			errs = append(errs, fmt.Sprintf("timing.preload_stagger_ms[%d] must not be negative", i))
		}
	}

	seen := map[string]struct{}{}
	for i, d := range cfg.Demos {
		if strings.TrimSpace(d.ID) == "" {
			errs = append(errs, fmt.Sprintf("demos[%d].id is required", i))
			continue
		}
		if _, dup := seen[d.ID]; dup {
			errs = append(errs, fmt.Sprintf("demos[%d].id %q is duplicated", i, d.ID))
		}
		seen[d.ID] = struct{}{}
		if strings.TrimSpace(d.EmbedURL) == "" {
			errs = append(errs, fmt.Sprintf("demos[%d].embed_url is required", i))
		} else if u, err := url.Parse(d.EmbedURL); err != nil || u.Scheme == "" {
			errs = append(errs, fmt.Sprintf("demos[%d].embed_url %q is not an absolute URL", i, d.EmbedURL))
		}
		if strings.TrimSpace(d.PanelID) == "" {
			errs = append(errs, fmt.Sprintf("demos[%d].panel_id is required", i))
		}
		if strings.TrimSpace(d.TriggerPattern) == "" {
			errs = append(errs, fmt.Sprintf("demos[%d].trigger_pattern is required", i))
		} else if !doublestar.ValidatePattern(d.TriggerPattern) {
			errs = append(errs, fmt.Sprintf("demos[%d].trigger_pattern %q is not a valid pattern", i, d.TriggerPattern))
		}
	}

	return errs
}

func (t Timing) HoverGrace() time.Duration {
	return time.Duration(t.HoverGraceMS) * time.Millisecond
}

func (t Timing) HideDelay() time.Duration {
	return time.Duration(t.HideDelayMS) * time.Millisecond
}

func (t Timing) PreloadStagger() []time.Duration {
	out := make([]time.Duration, len(t.PreloadStaggerMS))
	for i, ms := range t.PreloadStaggerMS {
		out[i] = time.Duration(ms) * time.Millisecond
	}
	return out
}
