// Package config holds the pipeline configuration, read from a
// YAML or JSON file and completed with defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/benoitkugler/bodysvg/svgbounds"
	"github.com/benoitkugler/bodysvg/svgextract"
	"github.com/benoitkugler/bodysvg/svgoverlay"
	yaml "gopkg.in/yaml.v3"
)

// Target maps a group key to its output file.
type Target struct {
	Group string `yaml:"group" json:"group"`
	Dir   string `yaml:"dir" json:"dir"`
	File  string `yaml:"file" json:"file"`
}

// NormalizeTarget is a file rewritten by the overlay normalizer.
type NormalizeTarget struct {
	Path   string `yaml:"path" json:"path"`
	Unhide bool   `yaml:"unhide" json:"unhide"`
}

// Overlay configures the overlay rectangles styling.
type Overlay struct {
	BackgroundWidth string `yaml:"backgroundWidth" json:"backgroundWidth"`
	DefaultFill     string `yaml:"defaultFill" json:"defaultFill"`
	PlaceholderFill string `yaml:"placeholderFill" json:"placeholderFill"`
	StrokeColor     string `yaml:"strokeColor" json:"strokeColor"`
	StrokeWidth     string `yaml:"strokeWidth" json:"strokeWidth"`
}

// Preview configures the PNG previews and the PDF proof sheet.
type Preview struct {
	Width  int    `yaml:"width" json:"width"`
	PNGDir string `yaml:"pngDir" json:"pngDir"`
	PDF    string `yaml:"pdf" json:"pdf"` // empty to skip the proof sheet
}

// Config represents the single-file configuration schema.
type Config struct {
	Source     string            `yaml:"source" json:"source"`
	OutputBase string            `yaml:"outputBase" json:"outputBase"`
	Padding    float64           `yaml:"padding" json:"padding"`
	Bounds     string            `yaml:"bounds" json:"bounds"`
	Targets    []Target          `yaml:"targets" json:"targets"`
	Overlay    Overlay           `yaml:"overlay" json:"overlay"`
	Normalize  []NormalizeTarget `yaml:"normalize" json:"normalize"` // empty means every target
	Preview    Preview           `yaml:"preview" json:"preview"`
}

// Default returns the configuration of the body model assets.
func Default() Config {
	overlay := svgoverlay.DefaultOptions()
	return Config{
		Source:     "app/assets/body_model/source/muscle_data_all.svg",
		OutputBase: "app/assets/body_model",
		Padding:    svgextract.DefaultOptions().Padding,
		Bounds:     svgbounds.Pairs.String(),
		Targets: []Target{
			{Group: "man_1", Dir: "male", File: "front_muscles.svg"},
			{Group: "man_2", Dir: "male", File: "back_muscles.svg"},
			{Group: "woman_1", Dir: "female", File: "front_muscles.svg"},
			{Group: "woman_2", Dir: "female", File: "back_muscles.svg"},
		},
		Overlay: Overlay{
			BackgroundWidth: overlay.BackgroundWidth,
			DefaultFill:     overlay.DefaultFill,
			PlaceholderFill: overlay.PlaceholderFill,
			StrokeColor:     overlay.StrokeColor,
			StrokeWidth:     overlay.StrokeWidth,
		},
		Preview: Preview{Width: 512, PNGDir: "previews"},
	}
}

// Load reads YAML or JSON on top of the defaults:
// fields absent from the file keep their default value.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			cfg = Default()
			if jerr := json.Unmarshal(b, &cfg); jerr != nil {
				return cfg, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return cfg, nil
}

// Validate checks the values which would make every item fail.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Source) == "" {
		return errors.New("config: source path is required")
	}
	if cfg.Padding < 0 {
		return errors.New("config: negative padding is not allowed")
	}
	if _, err := svgbounds.ParseMethod(cfg.Bounds); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if len(cfg.Targets) == 0 {
		return errors.New("config: at least one target is required")
	}
	for i, t := range cfg.Targets {
		if strings.TrimSpace(t.Group) == "" {
			return fmt.Errorf("config: target %d has an empty group key", i)
		}
		if strings.TrimSpace(t.File) == "" {
			return fmt.Errorf("config: target %q has an empty file name", t.Group)
		}
	}
	if strings.TrimSpace(cfg.Overlay.BackgroundWidth) == "" {
		return errors.New("config: overlay.backgroundWidth is required")
	}
	if cfg.Preview.Width < 0 {
		return errors.New("config: negative preview width is not allowed")
	}
	return nil
}

// resolve joins relative paths to the output base.
func (cfg Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(cfg.OutputBase, path)
}

// ExtractTargets returns the targets, resolved against OutputBase.
func (cfg Config) ExtractTargets() []svgextract.Target {
	out := make([]svgextract.Target, len(cfg.Targets))
	for i, t := range cfg.Targets {
		out[i] = svgextract.Target{Group: t.Group, Dir: cfg.resolve(t.Dir), File: t.File}
	}
	return out
}

// ExtractOptions returns the extractor options.
// The bounds method is assumed to be valid.
func (cfg Config) ExtractOptions() svgextract.Options {
	method, _ := svgbounds.ParseMethod(cfg.Bounds)
	return svgextract.Options{Padding: cfg.Padding, Bounds: method}
}

// OverlayOptions returns the normalizer options, with
// the given unhide behavior.
func (cfg Config) OverlayOptions(unhide bool) svgoverlay.Options {
	return svgoverlay.Options{
		BackgroundWidth: cfg.Overlay.BackgroundWidth,
		DefaultFill:     cfg.Overlay.DefaultFill,
		PlaceholderFill: cfg.Overlay.PlaceholderFill,
		StrokeColor:     cfg.Overlay.StrokeColor,
		StrokeWidth:     cfg.Overlay.StrokeWidth,
		Unhide:          unhide,
	}
}

// NormalizeTargets returns the files to normalize, resolved against
// OutputBase. When none is configured, every extracted file
// is normalized, with unhiding enabled.
func (cfg Config) NormalizeTargets() []NormalizeTarget {
	if len(cfg.Normalize) == 0 {
		out := make([]NormalizeTarget, 0, len(cfg.Targets))
		for _, t := range cfg.ExtractTargets() {
			out = append(out, NormalizeTarget{Path: t.Path(), Unhide: true})
		}
		return out
	}
	out := make([]NormalizeTarget, len(cfg.Normalize))
	for i, n := range cfg.Normalize {
		out[i] = NormalizeTarget{Path: cfg.resolve(n.Path), Unhide: n.Unhide}
	}
	return out
}

// PreviewPaths returns the PNG directory and the proof sheet path,
// resolved against OutputBase. The sheet path is empty when disabled.
func (cfg Config) PreviewPaths() (pngDir, pdf string) {
	pngDir = cfg.resolve(cfg.Preview.PNGDir)
	if cfg.Preview.PDF != "" {
		pdf = cfg.resolve(cfg.Preview.PDF)
	}
	return pngDir, pdf
}
