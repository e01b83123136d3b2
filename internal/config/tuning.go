package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/edge-sentinel/internal/exposure"
	"github.com/banshee-data/edge-sentinel/internal/units"
)

// maxFileSize bounds config files read from disk.
const maxFileSize = 1 * 1024 * 1024 // 1MB

// TuningConfig represents the root configuration for a scan. Every field
// is optional; the Get* methods fall back to the reference defaults so
// partial files are safe. The same keys are accepted in JSON and YAML.
type TuningConfig struct {
	// Classification params
	MinFloorHeight         *float64 `json:"min_floor_height,omitempty" yaml:"min_floor_height,omitempty"`
	MaxSelection           *int     `json:"max_selection,omitempty" yaml:"max_selection,omitempty"`
	BufferDistance         *float64 `json:"buffer_distance,omitempty" yaml:"buffer_distance,omitempty"`
	SegmentLength          *float64 `json:"segment_length,omitempty" yaml:"segment_length,omitempty"`
	MaxUncoveredPercentage *float64 `json:"max_uncovered_percentage,omitempty" yaml:"max_uncovered_percentage,omitempty"`
	MinCoverPercentage     *float64 `json:"min_cover_percentage,omitempty" yaml:"min_cover_percentage,omitempty"`
	Aggregation            *string  `json:"aggregation,omitempty" yaml:"aggregation,omitempty"` // "first" or "worst"

	// Execution params
	Workers        *int `json:"workers,omitempty" yaml:"workers,omitempty"`
	RTreeThreshold *int `json:"rtree_threshold,omitempty" yaml:"rtree_threshold,omitempty"`

	// Highlight params
	HighlightColor        *[3]int `json:"highlight_color,omitempty" yaml:"highlight_color,omitempty"` // RGB
	HighlightTransparency *int    `json:"highlight_transparency,omitempty" yaml:"highlight_transparency,omitempty"`

	// Model params
	Units *string `json:"units,omitempty" yaml:"units,omitempty"` // length unit of model coordinates
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field populated
// with its default value.
func DefaultTuningConfig() *TuningConfig {
	color := DefaultHighlightColor
	return &TuningConfig{
		MinFloorHeight:         ptrFloat64(exposure.DefaultMinFloorHeight),
		MaxSelection:           ptrInt(exposure.DefaultMaxSelection),
		BufferDistance:         ptrFloat64(exposure.DefaultBufferDistance),
		SegmentLength:          ptrFloat64(exposure.DefaultSegmentLength),
		MaxUncoveredPercentage: ptrFloat64(exposure.DefaultMaxUncoveredPercentage),
		MinCoverPercentage:     ptrFloat64(exposure.DefaultMinCoverPercentage),
		Aggregation:            ptrString(exposure.AggregateFirst.String()),
		Workers:                ptrInt(1),
		RTreeThreshold:         ptrInt(exposure.DefaultRTreeThreshold),
		HighlightColor:         &color,
		HighlightTransparency:  ptrInt(DefaultHighlightTransparency),
		Units:                  ptrString(units.Metres),
	}
}

// Highlight defaults.
var DefaultHighlightColor = [3]int{255, 50, 50}

const DefaultHighlightTransparency = 60

// LoadTuningConfig loads a TuningConfig from a .json, .yaml or .yml file.
// Fields omitted from the file keep their defaults via the Get* methods.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if ext == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.Aggregation != nil {
		if _, err := exposure.ParseAggregation(*c.Aggregation); err != nil {
			return err
		}
	}
	if c.HighlightColor != nil {
		for _, v := range c.HighlightColor {
			if v < 0 || v > 255 {
				return fmt.Errorf("highlight_color components must be between 0 and 255, got %v", *c.HighlightColor)
			}
		}
	}
	if c.HighlightTransparency != nil {
		if *c.HighlightTransparency < 0 || *c.HighlightTransparency > 100 {
			return fmt.Errorf("highlight_transparency must be between 0 and 100, got %d", *c.HighlightTransparency)
		}
	}
	if c.Units != nil && !units.IsValid(*c.Units) {
		return fmt.Errorf("units must be one of %s, got %q", units.GetValidUnitsString(), *c.Units)
	}
	// Range checks for the classification params live on exposure.Config.
	_, err := c.ExposureConfig()
	return err
}

// ExposureConfig converts c into the immutable value the classifier takes.
func (c *TuningConfig) ExposureConfig() (exposure.Config, error) {
	agg, err := exposure.ParseAggregation(c.GetAggregation())
	if err != nil {
		return exposure.Config{}, err
	}
	cfg := exposure.Config{
		MinFloorHeight:         c.GetMinFloorHeight(),
		MaxSelection:           c.GetMaxSelection(),
		BufferDistance:         c.GetBufferDistance(),
		SegmentLength:          c.GetSegmentLength(),
		MaxUncoveredPercentage: c.GetMaxUncoveredPercentage(),
		MinCoverPercentage:     c.GetMinCoverPercentage(),
		Aggregation:            agg,
		Workers:                c.GetWorkers(),
		RTreeThreshold:         c.GetRTreeThreshold(),
	}
	if err := cfg.Validate(); err != nil {
		return exposure.Config{}, err
	}
	return cfg, nil
}

// GetMinFloorHeight returns the min_floor_height value or the default.
func (c *TuningConfig) GetMinFloorHeight() float64 {
	if c.MinFloorHeight == nil {
		return exposure.DefaultMinFloorHeight
	}
	return *c.MinFloorHeight
}

// GetMaxSelection returns the max_selection value or the default.
func (c *TuningConfig) GetMaxSelection() int {
	if c.MaxSelection == nil {
		return exposure.DefaultMaxSelection
	}
	return *c.MaxSelection
}

// GetBufferDistance returns the buffer_distance value or the default.
func (c *TuningConfig) GetBufferDistance() float64 {
	if c.BufferDistance == nil {
		return exposure.DefaultBufferDistance
	}
	return *c.BufferDistance
}

// GetSegmentLength returns the segment_length value or the default.
func (c *TuningConfig) GetSegmentLength() float64 {
	if c.SegmentLength == nil {
		return exposure.DefaultSegmentLength
	}
	return *c.SegmentLength
}

// GetMaxUncoveredPercentage returns the max_uncovered_percentage value or the default.
func (c *TuningConfig) GetMaxUncoveredPercentage() float64 {
	if c.MaxUncoveredPercentage == nil {
		return exposure.DefaultMaxUncoveredPercentage
	}
	return *c.MaxUncoveredPercentage
}

// GetMinCoverPercentage returns the min_cover_percentage value or the default.
func (c *TuningConfig) GetMinCoverPercentage() float64 {
	if c.MinCoverPercentage == nil {
		return exposure.DefaultMinCoverPercentage
	}
	return *c.MinCoverPercentage
}

// GetAggregation returns the aggregation mode or "first".
func (c *TuningConfig) GetAggregation() string {
	if c.Aggregation == nil || *c.Aggregation == "" {
		return exposure.AggregateFirst.String()
	}
	return *c.Aggregation
}

// GetWorkers returns the workers value or 1.
func (c *TuningConfig) GetWorkers() int {
	if c.Workers == nil {
		return 1
	}
	return *c.Workers
}

// GetRTreeThreshold returns the rtree_threshold value or the default.
func (c *TuningConfig) GetRTreeThreshold() int {
	if c.RTreeThreshold == nil {
		return exposure.DefaultRTreeThreshold
	}
	return *c.RTreeThreshold
}

// GetHighlightColor returns the highlight RGB triple or the default.
func (c *TuningConfig) GetHighlightColor() [3]int {
	if c.HighlightColor == nil {
		return DefaultHighlightColor
	}
	return *c.HighlightColor
}

// GetHighlightTransparency returns the highlight transparency or the default.
func (c *TuningConfig) GetHighlightTransparency() int {
	if c.HighlightTransparency == nil {
		return DefaultHighlightTransparency
	}
	return *c.HighlightTransparency
}

// GetUnits returns the model length unit or metres.
func (c *TuningConfig) GetUnits() string {
	if c.Units == nil || *c.Units == "" {
		return units.Metres
	}
	return *c.Units
}
