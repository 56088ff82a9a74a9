package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/orrery/internal/config"
	"github.com/matzehuels/orrery/pkg/cache"
	"github.com/matzehuels/orrery/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "orrery"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any command runs.
	Config config.Config

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger and the built-in
// configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Defaults(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(noCache || c.Config.Cache.Disabled)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, nil, c.Logger), nil
}

func (c *CLI) newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or the XDG default
// (~/.cache/orrery/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// outputPath derives "<input without extension><suffix>" unless output is set.
func outputPath(output, input, suffix string) string {
	if output != "" {
		return output
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}

// =============================================================================
// Layout Flags
// =============================================================================

// layoutFlags binds the layout options shared by layout, stats, visualize
// and browse. Only flags the user set override the loaded configuration.
type layoutFlags struct {
	mode             string
	depthSpacing     float64
	rootsShareCircle bool
	rootWeighting    string
	baseSpeed        float64
	epsilon          float64
	maxDepth         int
	keepInputMass    bool
	seed             uint64
	baseDistance     float64
	distancePerMass  float64
	padding          float64
	noCache          bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.mode, "mode", pipeline.DefaultMode, "placement mode: radial, jitter")
	fs.Float64Var(&f.depthSpacing, "depth-spacing", pipeline.DefaultDepthSpacing, "radius increment per ring")
	fs.BoolVar(&f.rootsShareCircle, "roots-share-circle", true, "divide the circle among roots (false: every root gets the full circle)")
	fs.StringVar(&f.rootWeighting, "root-weighting", pipeline.DefaultRootWeighting, "root arcs: equal, subtree")
	fs.Float64Var(&f.baseSpeed, "base-speed", pipeline.DefaultBaseSpeed, "angular speed numerator")
	fs.Float64Var(&f.epsilon, "epsilon", pipeline.DefaultEpsilon, "angular speed denominator offset")
	fs.IntVar(&f.maxDepth, "max-depth", pipeline.DefaultMaxDepth, "reject hierarchies deeper than this (-1: unlimited)")
	fs.BoolVar(&f.keepInputMass, "keep-input-mass", false, "emit a numeric input mass instead of the computed one")
	fs.Uint64Var(&f.seed, "seed", pipeline.DefaultSeed, "jitter seed")
	fs.Float64Var(&f.baseDistance, "base-distance", pipeline.DefaultBaseDistance, "jitter distance added per level")
	fs.Float64Var(&f.distancePerMass, "distance-per-mass", pipeline.DefaultDistancePerMass, "jitter distance per unit of body size")
	fs.Float64Var(&f.padding, "padding", pipeline.DefaultPadding, "jitter gap between a parent body and its children")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// options returns the configured layout options with changed flags applied.
func (f *layoutFlags) options(cmd *cobra.Command, cfg config.LayoutConfig) pipeline.Options {
	opts := cfg.Options()
	changed := cmd.Flags().Changed

	if changed("mode") {
		opts.Mode = f.mode
	}
	if changed("depth-spacing") {
		opts.DepthSpacing = f.depthSpacing
	}
	if changed("roots-share-circle") {
		share := f.rootsShareCircle
		opts.RootsShareCircle = &share
	}
	if changed("root-weighting") {
		opts.RootWeighting = f.rootWeighting
	}
	if changed("base-speed") {
		opts.BaseSpeed = f.baseSpeed
	}
	if changed("epsilon") {
		opts.Epsilon = f.epsilon
	}
	if changed("max-depth") {
		opts.MaxDepth = f.maxDepth
	}
	if changed("keep-input-mass") {
		opts.KeepInputMass = f.keepInputMass
	}
	if changed("seed") {
		opts.Seed = f.seed
	}
	if changed("base-distance") {
		opts.BaseDistance = f.baseDistance
	}
	if changed("distance-per-mass") {
		opts.DistancePerMass = f.distancePerMass
	}
	if changed("padding") {
		opts.Padding = f.padding
	}
	return opts
}
