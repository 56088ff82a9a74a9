package planet

import (
	"bytes"
	"math"
	"slices"
	"strings"
	"testing"

	orerrors "github.com/matzehuels/orrery/pkg/errors"
	"github.com/matzehuels/orrery/pkg/forest"
	"github.com/matzehuels/orrery/pkg/orbit"
)

const sample = `{
  "R": {"color": "red", "x": 1, "y": 2, "z": 3, "mass": 99},
  "A": {"parent": "R", "preview_url": "a.mp3"},
  "B": {"parent": "R"},
  "C": {"parent": "B", "mass": 7.5}
}`

func radialSystem(t *testing.T, input string, opts AssembleOptions) *System {
	t.Helper()
	c, err := DecodeJSON(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeJSON() error: %v", err)
	}
	entries, err := c.Entries()
	if err != nil {
		t.Fatal(err)
	}
	f, err := forest.Build(entries, forest.BuildOptions{})
	if err != nil {
		t.Fatal(err)
	}
	l, err := orbit.Radial(f, forest.SubtreeSizes(f), orbit.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	omega, err := orbit.AngularSpeeds(l, orbit.DefaultSpeedOptions())
	if err != nil {
		t.Fatal(err)
	}
	sys, err := Assemble(c, f, Metrics{Layout: l, Omega: omega, Masses: forest.Masses(f)}, opts)
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}
	return sys
}

func TestAssemble_Radial(t *testing.T) {
	sys := radialSystem(t, sample, AssembleOptions{})

	if sys.Mode != ModeRadial {
		t.Errorf("Mode = %s, want radial", sys.Mode)
	}
	want := map[string]struct {
		depth  int
		radius float64
		mass   float64
	}{
		"R": {1, 200, 3}, "A": {2, 400, 1}, "B": {2, 400, 2}, "C": {3, 600, 2},
	}
	for _, p := range sys.Planets {
		w := want[p.ID]
		if p.Depth != w.depth || p.Radius != w.radius || p.Mass != w.mass {
			t.Errorf("%s: depth=%d r=%v mass=%v, want %d %v %v", p.ID, p.Depth, p.Radius, p.Mass, w.depth, w.radius, w.mass)
		}
	}
	a, _ := sys.Get("A")
	if math.Abs(a.Theta0-math.Pi/3) > 1e-9 {
		t.Errorf("theta0(A) = %v, want π/3", a.Theta0)
	}
	if math.Abs(a.Omega-0.8/400.001) > 1e-12 {
		t.Errorf("omega(A) = %v", a.Omega)
	}
}

func TestSystem_RecordLayout(t *testing.T) {
	sys := radialSystem(t, sample, AssembleOptions{})

	r, _ := sys.Get("R")
	rec := sys.Record(r)
	// Prior coordinates are gone, mass keeps its slot, new keys are appended.
	if got, want := keys(rec), []string{"color", "mass", "r", "theta0", "depth", "omega"}; !slices.Equal(got, want) {
		t.Errorf("keys(R) = %v, want %v", got, want)
	}
	if v, _ := rec.Get(KeyMass); v != 3.0 {
		t.Errorf("mass(R) = %v, want computed 3", v)
	}

	a, _ := sys.Get("A")
	if got, want := keys(sys.Record(a)), []string{"parent", "preview_url", "r", "theta0", "depth", "omega", "mass"}; !slices.Equal(got, want) {
		t.Errorf("keys(A) = %v, want %v", got, want)
	}

	// The input record is left untouched.
	if _, ok := r.Attrs.Get(KeyX); !ok {
		t.Error("Record() must not modify the passthrough attributes")
	}
}

func TestAssemble_KeepInputMass(t *testing.T) {
	sys := radialSystem(t, sample, AssembleOptions{KeepInputMass: true})

	for id, want := range map[string]float64{"R": 99, "A": 1, "B": 2, "C": 7.5} {
		p, _ := sys.Get(id)
		if p.Mass != want {
			t.Errorf("mass(%s) = %v, want %v", id, p.Mass, want)
		}
	}
}

func TestAssemble_Jitter(t *testing.T) {
	c, _ := DecodeJSON(strings.NewReader(sample))
	entries, _ := c.Entries()
	f, _ := forest.Build(entries, forest.BuildOptions{})
	masses := forest.Masses(f)
	pts, err := orbit.Jitter(f, masses, orbit.DefaultJitterOptions())
	if err != nil {
		t.Fatal(err)
	}

	sys, err := Assemble(c, f, Metrics{Positions: pts, Masses: masses}, AssembleOptions{})
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}
	if sys.Mode != ModeJitter {
		t.Fatalf("Mode = %s, want jitter", sys.Mode)
	}

	r, _ := sys.Get("R")
	if got, want := keys(sys.Record(r)), []string{"color", "x", "y", "z", "mass", "size"}; !slices.Equal(got, want) {
		t.Errorf("keys(R) = %v, want %v", got, want)
	}
	if r.Size != orbit.BodySize(3) {
		t.Errorf("size(R) = %v, want %v", r.Size, orbit.BodySize(3))
	}
}

func TestAssemble_MetricsMismatch(t *testing.T) {
	c, _ := DecodeJSON(strings.NewReader(sample))
	entries, _ := c.Entries()
	f, _ := forest.Build(entries, forest.BuildOptions{})

	if _, err := Assemble(c, f, Metrics{Masses: []int{1}}, AssembleOptions{}); err == nil {
		t.Error("Assemble() with short metrics should fail")
	}
}

func TestSystem_JSONRoundTrip(t *testing.T) {
	for _, mode := range []Mode{ModeRadial, ModeJitter} {
		t.Run(string(mode), func(t *testing.T) {
			sys := radialSystem(t, sample, AssembleOptions{})
			if mode == ModeJitter {
				for i := range sys.Planets {
					sys.Planets[i].Position = orbit.Point{X: float64(i), Y: 1, Z: -1}
					sys.Planets[i].Size = 1
				}
				sys.Mode = ModeJitter
			}

			var first bytes.Buffer
			if err := sys.Encode(&first); err != nil {
				t.Fatal(err)
			}
			back := System{Mode: mode}
			if err := back.UnmarshalJSON(first.Bytes()); err != nil {
				t.Fatalf("UnmarshalJSON() error: %v", err)
			}
			if back.Mode != mode {
				t.Errorf("Mode = %s, want %s", back.Mode, mode)
			}
			var second bytes.Buffer
			if err := back.Encode(&second); err != nil {
				t.Fatal(err)
			}
			if first.String() != second.String() {
				t.Errorf("re-encoding changed output:\n%s\nvs\n%s", first.String(), second.String())
			}
		})
	}
}

func TestDecodeSystem_PassthroughRadiusInJitterMode(t *testing.T) {
	data := `{"A": {"r": 5, "x": 1, "y": 2, "z": 3, "mass": 2, "size": 1.4}, "B": {"parent": "A", "r": 7, "x": -4, "y": 0, "z": 0.5, "mass": 1, "size": 1}}`

	sys, err := DecodeSystem([]byte(data), ModeJitter)
	if err != nil {
		t.Fatalf("DecodeSystem() error: %v", err)
	}
	if sys.Mode != ModeJitter {
		t.Fatalf("Mode = %s, want jitter", sys.Mode)
	}
	b, ok := sys.Get("B")
	if !ok {
		t.Fatal("Get(B) not found")
	}
	if want := (orbit.Point{X: -4, Z: 0.5}); b.Position != want || b.Size != 1 || b.Parent != "A" {
		t.Errorf("B = %+v, want position %+v size 1 parent A", b, want)
	}
	if v, _ := sys.Record(b).Get(KeyRadius); numAttrValue(v) != 7 {
		t.Errorf("passthrough r = %v, want 7", v)
	}
}

func numAttrValue(v any) float64 {
	n, _ := number(v)
	return n
}

func TestDecodeSystem_UnknownMode(t *testing.T) {
	_, err := DecodeSystem([]byte(`{"A": {}}`), Mode("spiral"))
	if !orerrors.Is(err, orerrors.ErrCodeInvalidFormat) {
		t.Errorf("DecodeSystem(spiral) error = %v, want INVALID_FORMAT", err)
	}
}

func TestSystem_GetAfterEdit(t *testing.T) {
	sys := radialSystem(t, sample, AssembleOptions{})
	sys.Planets = sys.Planets[1:]

	if _, ok := sys.Get(sys.Planets[0].ID); !ok {
		t.Errorf("Get(%s) missed after Planets was resliced", sys.Planets[0].ID)
	}
	if _, ok := sys.Get("nope"); ok {
		t.Error("Get(nope) found a planet")
	}
}

func TestSystem_Stats(t *testing.T) {
	sys := radialSystem(t, sample, AssembleOptions{})
	st := sys.Stats()

	if st.Bodies != 4 || st.Roots != 1 || st.Leaves != 2 || st.MaxDepth != 3 {
		t.Errorf("Stats() = %+v", st)
	}
	wantBodies := []int{1, 2, 1}
	if len(st.Rings) != 3 {
		t.Fatalf("len(Rings) = %d, want 3", len(st.Rings))
	}
	for i, r := range st.Rings {
		if r.Depth != i+1 || r.Bodies != wantBodies[i] || r.Radius != float64(200*(i+1)) {
			t.Errorf("ring %d = %+v", i, r)
		}
	}
}

func TestSystem_SortedByOrbit(t *testing.T) {
	sys := radialSystem(t, sample, AssembleOptions{})
	var ids []string
	for _, p := range sys.SortedByOrbit() {
		ids = append(ids, p.ID)
	}
	if want := []string{"R", "A", "B", "C"}; !slices.Equal(ids, want) {
		t.Errorf("SortedByOrbit() = %v, want %v", ids, want)
	}
}
