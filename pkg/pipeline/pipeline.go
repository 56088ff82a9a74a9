// Package pipeline runs the complete layout pipeline for orrery.
//
// This package implements the decode → layout → render flow shared by the
// CLI and the HTTP API, so every entry point applies the same defaults,
// validation and caching.
//
// # Architecture
//
// Layout runs six stages in order, each reading only the output of earlier
// ones:
//
//  1. Build: parent links → forest (rejects dangling parents, cycles,
//     empty forests and hierarchies deeper than MaxDepth)
//  2. Subtree sizes
//  3. Masses (ancestors + descendants)
//  4. Placement: radial partition, or spherical jitter in jitter mode
//  5. Angular speeds (radial mode)
//  6. Assembly into a [planet.System]
//
// Render turns a system into artifacts (JSON, DOT, SVG).
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, collection, pipeline.Options{
//	    Formats: []string{pipeline.FormatJSON},
//	})
//	if err != nil {
//	    return err
//	}
//	os.Stdout.Write(result.Artifacts[pipeline.FormatJSON])
package pipeline

import (
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orrery/pkg/cache"
	orerrors "github.com/matzehuels/orrery/pkg/errors"
	"github.com/matzehuels/orrery/pkg/orbit"
	"github.com/matzehuels/orrery/pkg/planet"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultDepthSpacing is the radius increment per ring.
	DefaultDepthSpacing = orbit.DefaultDepthSpacing

	// DefaultBaseSpeed is the numerator of omega = base / (r + epsilon).
	DefaultBaseSpeed = orbit.DefaultBaseSpeed

	// DefaultEpsilon keeps omega finite at r = 0.
	DefaultEpsilon = orbit.DefaultEpsilon

	// DefaultMaxDepth bounds hierarchy depth. Taxonomies are shallow; a
	// deeper input is almost certainly malformed.
	DefaultMaxDepth = 1000

	// DefaultSeed is the jitter seed.
	DefaultSeed = uint64(orbit.DefaultSeed)

	// DefaultBaseDistance, DefaultDistancePerMass and DefaultPadding shape
	// jitter distances.
	DefaultBaseDistance    = orbit.DefaultBaseDistance
	DefaultDistancePerMass = orbit.DefaultDistancePerMass
	DefaultPadding         = orbit.DefaultPadding

	// DefaultMode is the placement mode.
	DefaultMode = ModeRadial

	// DefaultRootWeighting divides the circle equally among roots.
	DefaultRootWeighting = string(orbit.RootWeightingEqual)
)

// Placement modes.
const (
	ModeRadial = string(planet.ModeRadial)
	ModeJitter = string(planet.ModeJitter)
)

// Output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidModes is the set of supported placement modes.
var ValidModes = map[string]bool{
	ModeRadial: true,
	ModeJitter: true,
}

// ValidRootWeightings is the set of supported root weightings.
var ValidRootWeightings = map[string]bool{
	string(orbit.RootWeightingEqual):   true,
	string(orbit.RootWeightingSubtree): true,
}

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline. Zero values mean
// "use the default". It supports JSON for API requests.
type Options struct {
	// Layout options
	Mode             string  `json:"mode,omitempty"`
	DepthSpacing     float64 `json:"depth_spacing,omitempty"`
	RootsShareCircle *bool   `json:"roots_share_circle,omitempty"`
	RootWeighting    string  `json:"root_weighting,omitempty"`
	BaseSpeed        float64 `json:"base_speed,omitempty"`
	Epsilon          float64 `json:"epsilon,omitempty"`
	MaxDepth         int     `json:"max_depth,omitempty"` // < 0 disables the limit
	KeepInputMass    bool    `json:"keep_input_mass,omitempty"`

	// Jitter options
	Seed            uint64  `json:"seed,omitempty"`
	BaseDistance    float64 `json:"base_distance,omitempty"`
	DistancePerMass float64 `json:"distance_per_mass,omitempty"`
	Padding         float64 `json:"padding,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Scale   float64  `json:"scale,omitempty"`
	Labels  bool     `json:"labels,omitempty"`

	// Refresh bypasses cache reads. Results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// System is the laid-out collection.
	System *planet.System

	// InputHash is the content hash of the input collection.
	InputHash string

	// LayoutHash is the content hash of the encoded system.
	LayoutHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	RootCount  int
	MaxDepth   int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits per stage.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateMode checks that a placement mode is supported.
func ValidateMode(mode string) error {
	if !ValidModes[mode] {
		return orerrors.New(orerrors.ErrCodeInvalidConfig, "invalid mode: %q (must be one of: radial, jitter)", mode)
	}
	return nil
}

// ValidateRootWeighting checks that a root weighting is supported.
func ValidateRootWeighting(w string) error {
	if !ValidRootWeightings[w] {
		return orerrors.New(orerrors.ErrCodeInvalidConfig, "invalid root_weighting: %q (must be one of: equal, subtree)", w)
	}
	return nil
}

// ValidateFormat checks that an output format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return orerrors.New(orerrors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, dot, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetLayoutDefaults fills unset layout options.
func (o *Options) SetLayoutDefaults() {
	if o.Mode == "" {
		o.Mode = DefaultMode
	}
	if o.DepthSpacing == 0 {
		o.DepthSpacing = DefaultDepthSpacing
	}
	if o.RootsShareCircle == nil {
		share := true
		o.RootsShareCircle = &share
	}
	if o.RootWeighting == "" {
		o.RootWeighting = DefaultRootWeighting
	}
	if o.BaseSpeed == 0 {
		o.BaseSpeed = DefaultBaseSpeed
	}
	if o.Epsilon == 0 {
		o.Epsilon = DefaultEpsilon
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.BaseDistance == 0 {
		o.BaseDistance = DefaultBaseDistance
	}
	if o.DistancePerMass == 0 {
		o.DistancePerMass = DefaultDistancePerMass
	}
	if o.Padding == 0 {
		o.Padding = DefaultPadding
	}
}

// ValidateForLayout applies defaults and validates layout options.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := ValidateMode(o.Mode); err != nil {
		return err
	}
	if err := ValidateRootWeighting(o.RootWeighting); err != nil {
		return err
	}
	if err := orerrors.ValidatePositive("depth_spacing", o.DepthSpacing); err != nil {
		return err
	}
	if err := o.SpeedOptions().Validate(); err != nil {
		return err
	}
	return o.JitterOptions().Validate()
}

// SetRenderDefaults fills unset render options.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
}

// ValidateForRender applies defaults and validates render options.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return orerrors.ValidateNonNegative("scale", o.Scale)
}

// SharesCircle reports whether roots divide one circle.
func (o *Options) SharesCircle() bool {
	return o.RootsShareCircle == nil || *o.RootsShareCircle
}

// IsJitter reports whether jitter placement is selected.
func (o *Options) IsJitter() bool { return o.Mode == ModeJitter }

// RadialOptions converts to [orbit.Options].
func (o *Options) RadialOptions() orbit.Options {
	return orbit.Options{
		DepthSpacing:     o.DepthSpacing,
		RootsShareCircle: o.SharesCircle(),
		RootWeighting:    orbit.RootWeighting(o.RootWeighting),
	}
}

// SpeedOptions converts to [orbit.SpeedOptions].
func (o *Options) SpeedOptions() orbit.SpeedOptions {
	return orbit.SpeedOptions{BaseSpeed: o.BaseSpeed, Epsilon: o.Epsilon}
}

// JitterOptions converts to [orbit.JitterOptions].
func (o *Options) JitterOptions() orbit.JitterOptions {
	return orbit.JitterOptions{
		Seed:            o.Seed,
		BaseDistance:    o.BaseDistance,
		DistancePerMass: o.DistancePerMass,
		Padding:         o.Padding,
	}
}

// buildMaxDepth maps MaxDepth to the forest's convention (<= 0 unbounded).
func (o *Options) buildMaxDepth() int {
	return max(o.MaxDepth, 0)
}

// LayoutKeyOpts returns cache key options for layout computation. Jitter
// parameters only take part in jitter keys.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	k := cache.LayoutKeyOpts{
		Mode:             o.Mode,
		DepthSpacing:     o.DepthSpacing,
		RootsShareCircle: o.SharesCircle(),
		RootWeighting:    o.RootWeighting,
		BaseSpeed:        o.BaseSpeed,
		Epsilon:          o.Epsilon,
		MaxDepth:         o.MaxDepth,
		KeepInputMass:    o.KeepInputMass,
	}
	if o.IsJitter() {
		k.Seed = o.Seed
		k.BaseDistance = o.BaseDistance
		k.DistancePerMass = o.DistancePerMass
		k.Padding = o.Padding
	}
	return k
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format, Scale: o.Scale, Labels: o.Labels}
}

// HasFormat reports whether format was requested.
func (o *Options) HasFormat(format string) bool {
	return slices.Contains(o.Formats, format)
}
