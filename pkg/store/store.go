// Package store persists computed layouts as snapshots.
//
// A snapshot is an immutable, addressable copy of one pipeline result: the
// encoded system plus the hashes and options that produced it. The HTTP API
// stores one per POST so clients can fetch a layout again by id.
//
// Backends:
//   - memory: in-process map, the server default
//   - file: one JSON file per snapshot, for single-host deployments
//   - mongo: MongoDB collection with a TTL index, for shared deployments
//
// # Usage
//
//	snap, err := store.NewSnapshot(sys, inputHash, opts, store.DefaultTTL)
//	if err != nil {
//	    return err
//	}
//	if err := s.Save(ctx, snap); err != nil {
//	    return err
//	}
//
//	got, err := s.Get(ctx, snap.ID)
//	if orerrors.Is(err, orerrors.ErrCodeNotFound) { ... }
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/orrery/pkg/cache"
	orerrors "github.com/matzehuels/orrery/pkg/errors"
	"github.com/matzehuels/orrery/pkg/planet"
)

// DefaultTTL is how long a snapshot stays retrievable.
const DefaultTTL = 30 * 24 * time.Hour

// Snapshot is a stored layout.
type Snapshot struct {
	ID        string          `json:"id"`
	Hash      string          `json:"hash"`       // hash of System
	InputHash string          `json:"input_hash"` // hash of the input collection
	Options   json.RawMessage `json:"options,omitempty"`
	Stats     planet.Stats    `json:"stats"`
	Mode      planet.Mode     `json:"mode"`
	System    json.RawMessage `json:"planets"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// NewSnapshot encodes sys into a new snapshot with a random id. opts is
// recorded as given (nil is allowed).
func NewSnapshot(sys *planet.System, inputHash string, opts any, ttl time.Duration) (*Snapshot, error) {
	data, err := json.Marshal(sys)
	if err != nil {
		return nil, orerrors.Wrap(orerrors.ErrCodeInternal, err, "encode system")
	}
	var rawOpts json.RawMessage
	if opts != nil {
		if rawOpts, err = json.Marshal(opts); err != nil {
			return nil, orerrors.Wrap(orerrors.ErrCodeInternal, err, "encode options")
		}
	}

	now := time.Now().UTC()
	return &Snapshot{
		ID:        uuid.NewString(),
		Hash:      cache.Hash(data),
		InputHash: inputHash,
		Options:   rawOpts,
		Stats:     sys.Stats(),
		Mode:      sys.Mode,
		System:    data,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

// IsExpired reports whether the snapshot has outlived its TTL.
func (s *Snapshot) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Decode returns the stored system in the mode it was laid out with.
func (s *Snapshot) Decode() (*planet.System, error) {
	mode := s.Mode
	if mode == "" {
		mode = planet.ModeRadial
	}
	sys, err := planet.DecodeSystem(s.System, mode)
	if err != nil {
		return nil, orerrors.Wrap(orerrors.ErrCodeInternal, err, "decode snapshot %s", s.ID)
	}
	return sys, nil
}

// Store is the interface for snapshot storage backends.
type Store interface {
	// Save stores a snapshot. Saving an existing id replaces it.
	Save(ctx context.Context, snap *Snapshot) error

	// Get retrieves a snapshot by id. Unknown, malformed and expired ids
	// return a NOT_FOUND error.
	Get(ctx context.Context, id string) (*Snapshot, error)

	// Delete removes a snapshot. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// checkID rejects ids that are not UUIDs before they reach a backend.
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return notFound(id)
	}
	return nil
}

func notFound(id string) error {
	return orerrors.New(orerrors.ErrCodeNotFound, "snapshot %q not found", id)
}
