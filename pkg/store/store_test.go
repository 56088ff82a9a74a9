package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orerrors "github.com/matzehuels/orrery/pkg/errors"
	"github.com/matzehuels/orrery/pkg/planet"
)

func system(t *testing.T) *planet.System {
	t.Helper()
	sys := &planet.System{}
	err := json.Unmarshal([]byte(`{
		"Sol": {"r": 200, "theta0": 3.14, "depth": 1, "omega": 0.004, "mass": 1},
		"Terra": {"parent": "Sol", "r": 400, "theta0": 3.14, "depth": 2, "omega": 0.002, "mass": 1}
	}`), sys)
	require.NoError(t, err)
	return sys
}

func snapshot(t *testing.T, ttl time.Duration) *Snapshot {
	t.Helper()
	snap, err := NewSnapshot(system(t), "input-hash", map[string]any{"mode": "radial"}, ttl)
	require.NoError(t, err)
	return snap
}

func TestNewSnapshot(t *testing.T) {
	snap := snapshot(t, time.Hour)

	assert.Len(t, snap.ID, 36)
	assert.Len(t, snap.Hash, 64)
	assert.Equal(t, "input-hash", snap.InputHash)
	assert.JSONEq(t, `{"mode":"radial"}`, string(snap.Options))
	assert.Equal(t, 2, snap.Stats.Bodies)
	assert.Equal(t, 1, snap.Stats.Roots)
	assert.False(t, snap.IsExpired())

	sys, err := snap.Decode()
	require.NoError(t, err)
	p, ok := sys.Get("Terra")
	require.True(t, ok)
	assert.Equal(t, "Sol", p.Parent)
	assert.Equal(t, 400.0, p.Radius)
}

func TestNewSnapshot_UniqueIDs(t *testing.T) {
	a, b := snapshot(t, time.Hour), snapshot(t, time.Hour)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.Hash, b.Hash, "same system, same hash")
}

// stores returns every backend that runs without external services.
func stores(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fs,
	}
}

func TestStore_SaveGet(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()
			snap := snapshot(t, time.Hour)
			require.NoError(t, s.Save(ctx, snap))

			got, err := s.Get(ctx, snap.ID)
			require.NoError(t, err)
			assert.Equal(t, snap.ID, got.ID)
			assert.Equal(t, snap.Hash, got.Hash)
			assert.JSONEq(t, string(snap.System), string(got.System))
		})
	}
}

func TestStore_JitterModeSurvives(t *testing.T) {
	ctx := context.Background()
	sys, err := planet.DecodeSystem([]byte(`{
		"Sol": {"r": 5, "x": 0, "y": 0, "z": 10, "mass": 2, "size": 1.41},
		"Terra": {"parent": "Sol", "x": 3, "y": -4, "z": 12, "mass": 1, "size": 1}
	}`), planet.ModeJitter)
	require.NoError(t, err)

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()
			snap, err := NewSnapshot(sys, "input-hash", nil, time.Hour)
			require.NoError(t, err)
			require.NoError(t, s.Save(ctx, snap))

			got, err := s.Get(ctx, snap.ID)
			require.NoError(t, err)
			back, err := got.Decode()
			require.NoError(t, err)

			assert.Equal(t, planet.ModeJitter, back.Mode)
			sol, ok := back.Get("Sol")
			require.True(t, ok)
			assert.Equal(t, 10.0, sol.Position.Z)
			assert.Equal(t, 1.41, sol.Size)
		})
	}
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for _, id := range []string{
				"6f1c1c8e-3c1e-4c1e-9c1e-1c1e1c1e1c1e",
				"not-a-uuid",
				"../../etc/passwd",
			} {
				_, err := s.Get(ctx, id)
				assert.True(t, orerrors.Is(err, orerrors.ErrCodeNotFound), "Get(%q) = %v", id, err)
			}
		})
	}
}

func TestStore_Expired(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			snap := snapshot(t, -time.Minute)
			require.NoError(t, s.Save(ctx, snap))
			_, err := s.Get(ctx, snap.ID)
			assert.True(t, orerrors.Is(err, orerrors.ErrCodeNotFound))
		})
	}
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			snap := snapshot(t, time.Hour)
			require.NoError(t, s.Save(ctx, snap))
			require.NoError(t, s.Delete(ctx, snap.ID))
			require.NoError(t, s.Delete(ctx, snap.ID), "second delete is a no-op")

			_, err := s.Get(ctx, snap.ID)
			assert.True(t, orerrors.Is(err, orerrors.ErrCodeNotFound))
		})
	}
}

func TestStore_SaveRejectsBadID(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			snap := snapshot(t, time.Hour)
			snap.ID = "nope"
			assert.Error(t, s.Save(context.Background(), snap))
		})
	}
}

func TestFileStore_Cleanup(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	require.NoError(t, err)

	live, dead := snapshot(t, time.Hour), snapshot(t, -time.Hour)
	require.NoError(t, fs.Save(ctx, live))
	require.NoError(t, fs.Save(ctx, dead))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.json"), []byte("{"), 0o600))

	n, err := fs.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{live.ID + ".json", "junk.json"}, names)
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("ORRERY_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("ORRERY_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	s, err := NewMongoStore(ctx, MongoConfig{URI: uri, Collection: "snapshots_test"})
	require.NoError(t, err)
	defer s.Close()

	snap := snapshot(t, time.Hour)
	require.NoError(t, s.Save(ctx, snap))
	defer s.Delete(ctx, snap.ID)

	got, err := s.Get(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.Hash, got.Hash)
	assert.True(t, strings.Contains(string(got.System), "Terra"))
}
