package orbit

import (
	"math"

	orerrors "github.com/matzehuels/orrery/pkg/errors"
)

const (
	// DefaultBaseSpeed is the numerator of the angular speed formula.
	DefaultBaseSpeed = 0.8
	// DefaultEpsilon keeps omega finite for a zero radius.
	DefaultEpsilon = 1e-3
)

// SpeedOptions configures [AngularSpeeds].
type SpeedOptions struct {
	BaseSpeed float64
	Epsilon   float64
}

// DefaultSpeedOptions returns base 0.8 and epsilon 1e-3.
func DefaultSpeedOptions() SpeedOptions {
	return SpeedOptions{BaseSpeed: DefaultBaseSpeed, Epsilon: DefaultEpsilon}
}

// Validate reports an INVALID_CONFIG error for non-positive parameters.
func (o SpeedOptions) Validate() error {
	if err := orerrors.ValidatePositive("base_speed", o.BaseSpeed); err != nil {
		return err
	}
	return orerrors.ValidatePositive("epsilon", o.Epsilon)
}

// AngularSpeed returns base / (radius + eps).
func AngularSpeed(radius, base, eps float64) float64 {
	return base / (radius + eps)
}

// AngularSpeeds returns omega for every placement in l, by forest index.
func AngularSpeeds(l Layout, opts SpeedOptions) ([]float64, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	out := make([]float64, len(l.Placements))
	for i, p := range l.Placements {
		out[i] = AngularSpeed(p.Radius, opts.BaseSpeed, opts.Epsilon)
	}
	return out, nil
}

// BodySize is the display size of a body of the given mass: sqrt(mass),
// floored at 0.5. A zero mass counts as 1.
func BodySize(mass int) float64 {
	m := float64(mass)
	if mass == 0 {
		m = 1
	}
	return max(0.5, math.Sqrt(max(m, 0)))
}
