package orbit

import (
	"math"
	"math/rand/v2"

	orerrors "github.com/matzehuels/orrery/pkg/errors"
	"github.com/matzehuels/orrery/pkg/forest"
)

// Jitter defaults.
const (
	DefaultSeed            = 42
	DefaultBaseDistance    = 10.0
	DefaultDistancePerMass = 5.0
	DefaultPadding         = 3.0
)

// JitterOptions configures [Jitter].
type JitterOptions struct {
	Seed            uint64
	BaseDistance    float64
	DistancePerMass float64
	Padding         float64
}

// DefaultJitterOptions returns seed 42, base distance 10, 5 units per unit
// of body size and a padding of 3.
func DefaultJitterOptions() JitterOptions {
	return JitterOptions{
		Seed:            DefaultSeed,
		BaseDistance:    DefaultBaseDistance,
		DistancePerMass: DefaultDistancePerMass,
		Padding:         DefaultPadding,
	}
}

// Validate reports an INVALID_CONFIG error for negative distances.
func (o JitterOptions) Validate() error {
	for _, p := range []struct {
		name string
		v    float64
	}{
		{"base_distance", o.BaseDistance},
		{"distance_per_mass", o.DistancePerMass},
		{"padding", o.Padding},
	} {
		if err := orerrors.ValidateNonNegative(p.name, p.v); err != nil {
			return err
		}
	}
	return nil
}

// Point is a position in 3D space.
type Point struct {
	X, Y, Z float64
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Sqrt((p.X-q.X)*(p.X-q.X) + (p.Y-q.Y)*(p.Y-q.Y) + (p.Z-q.Z)*(p.Z-q.Z))
}

// Jitter places every node at a random point on a sphere around its parent
// (roots around the origin). The sphere radius is
//
//	parentDistance + BaseDistance + BodySize(mass) × DistancePerMass
//
// where parentDistance is 0 for roots and BodySize(parent) + Padding
// otherwise. Nodes are visited in pre-order so a given seed always yields
// the same positions for the same forest.
func Jitter(f *forest.Forest, masses []int, opts JitterOptions) ([]Point, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(masses) != f.Len() {
		return nil, orerrors.New(orerrors.ErrCodeInvalidInput,
			"masses cover %d nodes, forest has %d", len(masses), f.Len())
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0xdeadbeef))
	out := make([]Point, f.Len())

	for _, n := range f.PreOrder() {
		var center Point
		parentDistance := 0.0
		if p := f.Parent(n); p != forest.NoParent {
			center = out[p]
			parentDistance = BodySize(masses[p]) + opts.Padding
		}
		dist := parentDistance + opts.BaseDistance + BodySize(masses[n])*opts.DistancePerMass
		out[n] = onSphere(rng, center, dist)
	}
	return out, nil
}

func onSphere(rng *rand.Rand, c Point, r float64) Point {
	theta := rng.Float64() * 2 * math.Pi
	phi := rng.Float64() * math.Pi
	return Point{
		X: c.X + r*math.Sin(phi)*math.Cos(theta),
		Y: c.Y + r*math.Sin(phi)*math.Sin(theta),
		Z: c.Z + r*math.Cos(phi),
	}
}
