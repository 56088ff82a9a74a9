// Package config loads orrery's runtime configuration.
//
// Values come from, in increasing precedence: built-in defaults, a
// .orrery.toml file (current directory, then home, or an explicit path),
// ORRERY_* environment variables, and finally command-line flags, which the
// CLI applies on top of the loaded Config.
//
// Nested keys map to environment variables with underscores, so
// layout.depth_spacing is ORRERY_LAYOUT_DEPTH_SPACING.
package config

import (
	"errors"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/spf13/viper"

	orerrors "github.com/matzehuels/orrery/pkg/errors"
	"github.com/matzehuels/orrery/pkg/pipeline"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "ORRERY"

// FileName is the config file name searched for, without extension.
const FileName = ".orrery"

// LayoutConfig holds pipeline defaults.
type LayoutConfig struct {
	Mode             string  `mapstructure:"mode" validate:"oneof=radial jitter"`
	DepthSpacing     float64 `mapstructure:"depth_spacing" validate:"gt=0"`
	RootsShareCircle bool    `mapstructure:"roots_share_circle"`
	RootWeighting    string  `mapstructure:"root_weighting" validate:"oneof=equal subtree"`
	BaseSpeed        float64 `mapstructure:"base_speed" validate:"gt=0"`
	Epsilon          float64 `mapstructure:"epsilon" validate:"gt=0"`
	MaxDepth         int     `mapstructure:"max_depth" validate:"gte=-1"`
	KeepInputMass    bool    `mapstructure:"keep_input_mass"`
	Seed             uint64  `mapstructure:"seed"`
	BaseDistance     float64 `mapstructure:"base_distance" validate:"gte=0"`
	DistancePerMass  float64 `mapstructure:"distance_per_mass" validate:"gte=0"`
	Padding          float64 `mapstructure:"padding" validate:"gte=0"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	RedisURL        string        `mapstructure:"redis_url" validate:"omitempty,url"`
	MongoURI        string        `mapstructure:"mongo_uri" validate:"omitempty,url"`
	StoreDir        string        `mapstructure:"store_dir"`
	CacheSize       int           `mapstructure:"cache_size" validate:"gte=0"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" validate:"gt=0"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

// CacheConfig holds CLI cache settings.
type CacheConfig struct {
	Dir      string `mapstructure:"dir"`
	Disabled bool   `mapstructure:"disabled"`
}

// Config holds all runtime configuration.
type Config struct {
	Verbose bool         `mapstructure:"verbose"`
	Layout  LayoutConfig `mapstructure:"layout"`
	Server  ServerConfig `mapstructure:"server"`
	Cache   CacheConfig  `mapstructure:"cache"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Layout: LayoutConfig{
			Mode:             pipeline.DefaultMode,
			DepthSpacing:     pipeline.DefaultDepthSpacing,
			RootsShareCircle: true,
			RootWeighting:    pipeline.DefaultRootWeighting,
			BaseSpeed:        pipeline.DefaultBaseSpeed,
			Epsilon:          pipeline.DefaultEpsilon,
			MaxDepth:         pipeline.DefaultMaxDepth,
			Seed:             pipeline.DefaultSeed,
			BaseDistance:     pipeline.DefaultBaseDistance,
			DistancePerMass:  pipeline.DefaultDistancePerMass,
			Padding:          pipeline.DefaultPadding,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			CacheSize:       1024,
			MaxBodyBytes:    8 << 20,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("verbose", d.Verbose)

	v.SetDefault("layout.mode", d.Layout.Mode)
	v.SetDefault("layout.depth_spacing", d.Layout.DepthSpacing)
	v.SetDefault("layout.roots_share_circle", d.Layout.RootsShareCircle)
	v.SetDefault("layout.root_weighting", d.Layout.RootWeighting)
	v.SetDefault("layout.base_speed", d.Layout.BaseSpeed)
	v.SetDefault("layout.epsilon", d.Layout.Epsilon)
	v.SetDefault("layout.max_depth", d.Layout.MaxDepth)
	v.SetDefault("layout.keep_input_mass", d.Layout.KeepInputMass)
	v.SetDefault("layout.seed", d.Layout.Seed)
	v.SetDefault("layout.base_distance", d.Layout.BaseDistance)
	v.SetDefault("layout.distance_per_mass", d.Layout.DistancePerMass)
	v.SetDefault("layout.padding", d.Layout.Padding)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.redis_url", d.Server.RedisURL)
	v.SetDefault("server.mongo_uri", d.Server.MongoURI)
	v.SetDefault("server.store_dir", d.Server.StoreDir)
	v.SetDefault("server.cache_size", d.Server.CacheSize)
	v.SetDefault("server.max_body_bytes", d.Server.MaxBodyBytes)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.disabled", d.Cache.Disabled)
}

// New returns a viper instance with defaults, environment binding and the
// config file search path set up. An empty path searches for .orrery.toml
// in the working directory and the home directory.
func New(path string) *viper.Viper {
	v := viper.New()
	setDefaults(v, Defaults())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file (if any), unmarshals and validates. A missing
// file in the search path is fine; an explicit path that cannot be read is
// an error.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, orerrors.Wrap(orerrors.ErrCodeInvalidConfig, err, "read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, orerrors.Wrap(orerrors.ErrCodeInvalidConfig, err, "decode config")
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// File returns the config file viper used, or "" when none was found.
func File(v *viper.Viper) string {
	return v.ConfigFileUsed()
}

// Options converts the layout section to pipeline options.
func (c LayoutConfig) Options() pipeline.Options {
	share := c.RootsShareCircle
	return pipeline.Options{
		Mode:             c.Mode,
		DepthSpacing:     c.DepthSpacing,
		RootsShareCircle: &share,
		RootWeighting:    c.RootWeighting,
		BaseSpeed:        c.BaseSpeed,
		Epsilon:          c.Epsilon,
		MaxDepth:         c.MaxDepth,
		KeepInputMass:    c.KeepInputMass,
		Seed:             c.Seed,
		BaseDistance:     c.BaseDistance,
		DistancePerMass:  c.DistancePerMass,
		Padding:          c.Padding,
	}
}

var validate = newValidator()

// newValidator reports fields by their config keys.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks cfg against its field constraints and reports every
// violation in one INVALID_CONFIG error.
func Validate(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return orerrors.Wrap(orerrors.ErrCodeInvalidConfig, err, "validate config")
	}

	msgs := make([]string, len(fields))
	for i, fe := range fields {
		msgs[i] = describe(fe)
	}
	return orerrors.New(orerrors.ErrCodeInvalidConfig, "invalid config: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := keyName(fe.Namespace())
	switch fe.Tag() {
	case "oneof":
		return field + " must be one of: " + fe.Param()
	case "gt":
		return field + " must be greater than " + fe.Param()
	case "gte":
		return field + " must be at least " + fe.Param()
	case "url":
		return field + " must be a URL"
	case "required":
		return field + " is required"
	default:
		return field + " failed " + fe.Tag()
	}
}

// keyName strips the root struct name from a validator namespace, leaving
// the config key (layout.depth_spacing).
func keyName(ns string) string {
	if _, key, ok := strings.Cut(ns, "."); ok {
		return key
	}
	return ns
}
