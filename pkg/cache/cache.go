// Package cache stores computed layouts and rendered artifacts.
//
// All backends implement [Cache], a byte-oriented key/value store with
// per-entry TTL:
//
//   - [FileCache]: one JSON file per entry, used by the CLI
//   - [MemoryCache]: bounded LRU, used by the HTTP server
//   - [RedisCache]: shared cache for multi-instance deployments
//   - [NullCache]: stores nothing (--no-cache)
//
// Keys are produced by a [Keyer] so every caller derives the same key for
// the same input and options.
package cache

import (
	"context"
	"time"
)

// Default TTLs.
const (
	LayoutTTL   = 7 * 24 * time.Hour
	ArtifactTTL = 7 * 24 * time.Hour
)

// Cache is a key/value store for serialized results.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl <= 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey identifies a laid-out system by input hash and options.
	LayoutKey(inputHash string, opts LayoutKeyOpts) string
	// ArtifactKey identifies a rendered artifact of a laid-out system.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts lists every option that changes a layout.
type LayoutKeyOpts struct {
	Mode             string  `json:"mode"`
	DepthSpacing     float64 `json:"depth_spacing"`
	RootsShareCircle bool    `json:"roots_share_circle"`
	RootWeighting    string  `json:"root_weighting"`
	BaseSpeed        float64 `json:"base_speed"`
	Epsilon          float64 `json:"epsilon"`
	MaxDepth         int     `json:"max_depth"`
	KeepInputMass    bool    `json:"keep_input_mass"`
	Seed             uint64  `json:"seed,omitempty"`
	BaseDistance     float64 `json:"base_distance,omitempty"`
	DistancePerMass  float64 `json:"distance_per_mass,omitempty"`
	Padding          float64 `json:"padding,omitempty"`
}

// ArtifactKeyOpts lists every option that changes a rendered artifact.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Scale  float64 `json:"scale"`
	Labels bool    `json:"labels"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a [DefaultKeyer].
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// keyVersion is bumped when the cached layout encoding changes.
const keyVersion = "v1"

// LayoutKey returns "layout:<sha256>".
func (DefaultKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", keyVersion, inputHash, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", keyVersion, layoutHash, opts)
}
