package orbit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orerrors "github.com/matzehuels/orrery/pkg/errors"
	"github.com/matzehuels/orrery/pkg/forest"
)

func TestAngularSpeed(t *testing.T) {
	tests := []struct {
		radius float64
		want   float64
	}{
		{200, 0.8 / 200.001},
		{400, 0.8 / 400.001},
		{0, 800},
	}
	for _, tt := range tests {
		got := AngularSpeed(tt.radius, DefaultBaseSpeed, DefaultEpsilon)
		assert.InDelta(t, tt.want, got, 1e-12, "radius %v", tt.radius)
	}
}

func TestAngularSpeeds_MonotoneInRadius(t *testing.T) {
	f := build(t, wideForest())
	l, err := Radial(f, forest.SubtreeSizes(f), DefaultOptions())
	require.NoError(t, err)
	omega, err := AngularSpeeds(l, DefaultSpeedOptions())
	require.NoError(t, err)

	for i := range omega {
		assert.False(t, math.IsNaN(omega[i]) || math.IsInf(omega[i], 0))
		for j := range omega {
			if l.Placements[i].Radius < l.Placements[j].Radius {
				assert.Greater(t, omega[i], omega[j], "%s should outrun %s", f.ID(i), f.ID(j))
			}
		}
	}
}

func TestAngularSpeeds_Scenario(t *testing.T) {
	f := scenario(t)
	l, err := Radial(f, forest.SubtreeSizes(f), DefaultOptions())
	require.NoError(t, err)
	omega, err := AngularSpeeds(l, DefaultSpeedOptions())
	require.NoError(t, err)

	byID := forest.ByID(f, omega)
	assert.InDelta(t, 0.8/200.001, byID["R"], 1e-12)
	assert.Equal(t, byID["A"], byID["B"])
	assert.InDelta(t, 0.8/600.001, byID["C"], 1e-12)
}

func TestSpeedOptions_Validate(t *testing.T) {
	for _, opts := range []SpeedOptions{
		{BaseSpeed: 0, Epsilon: 1e-3},
		{BaseSpeed: 0.8, Epsilon: 0},
		{BaseSpeed: math.NaN(), Epsilon: 1e-3},
		{BaseSpeed: 0.8, Epsilon: math.Inf(1)},
	} {
		err := opts.Validate()
		assert.True(t, orerrors.Is(err, orerrors.ErrCodeInvalidConfig), "%+v: err = %v", opts, err)
	}
	assert.NoError(t, DefaultSpeedOptions().Validate())
}

func TestBodySize(t *testing.T) {
	tests := []struct {
		mass int
		want float64
	}{
		{0, 1},
		{1, 1},
		{4, 2},
		{9, 3},
		{-3, 0.5},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, BodySize(tt.mass), 1e-12, "mass %d", tt.mass)
	}
}
