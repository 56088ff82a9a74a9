package forest

import (
	"slices"
	"testing"
)

func TestSubtreeSizes_Scenario(t *testing.T) {
	f := mustBuild(t, scenario())
	sizes := ByID(f, SubtreeSizes(f))

	want := map[string]int{"R": 4, "A": 1, "B": 2, "C": 1}
	for id, w := range want {
		if sizes[id] != w {
			t.Errorf("size(%s) = %d, want %d", id, sizes[id], w)
		}
	}
}

func TestSubtreeSizes_Recurrence(t *testing.T) {
	f := mustBuild(t, genreForest())
	sizes := SubtreeSizes(f)

	for i := range f.Len() {
		sum := 1
		for _, c := range f.Children(i) {
			sum += sizes[c]
		}
		if sizes[i] != sum {
			t.Errorf("size(%s) = %d, want 1 + Σ children = %d", f.ID(i), sizes[i], sum)
		}
	}
}

func TestMasses_Scenario(t *testing.T) {
	f := mustBuild(t, scenario())
	masses := ByID(f, Masses(f))

	// R: 0 ancestors + 3 descendants; A: 1 + 0; B: 1 + 1; C: 2 + 0.
	want := map[string]int{"R": 3, "A": 1, "B": 2, "C": 2}
	for id, w := range want {
		if masses[id] != w {
			t.Errorf("mass(%s) = %d, want %d", id, masses[id], w)
		}
	}
}

func TestMasses_Identity(t *testing.T) {
	f := mustBuild(t, genreForest())
	sizes := SubtreeSizes(f)
	anc := AncestorCounts(f)
	desc := DescendantCounts(f)
	masses := Masses(f)

	for i := range f.Len() {
		if desc[i] != sizes[i]-1 {
			t.Errorf("descendants(%s) = %d, want size-1 = %d", f.ID(i), desc[i], sizes[i]-1)
		}
		if masses[i] != anc[i]+sizes[i]-1 {
			t.Errorf("mass(%s) = %d, want %d", f.ID(i), masses[i], anc[i]+sizes[i]-1)
		}
	}
}

func TestAncestorCounts_MatchDepths(t *testing.T) {
	f := mustBuild(t, genreForest())
	anc := AncestorCounts(f)
	depths := f.Depths()

	for i := range f.Len() {
		if anc[i] != depths[i]-1 {
			t.Errorf("ancestors(%s) = %d, want depth-1 = %d", f.ID(i), anc[i], depths[i]-1)
		}
		if f.IsRoot(i) && anc[i] != 0 {
			t.Errorf("root %s has %d ancestors", f.ID(i), anc[i])
		}
	}
}

func TestAncestorCounts_LongChain(t *testing.T) {
	const n = 20000
	f := mustBuild(t, chain(n))
	anc := AncestorCounts(f)
	if anc[n-1] != n-1 {
		t.Errorf("ancestors(last) = %d, want %d", anc[n-1], n-1)
	}
	sizes := SubtreeSizes(f)
	if sizes[0] != n {
		t.Errorf("size(first) = %d, want %d", sizes[0], n)
	}
}

func TestPreOrder(t *testing.T) {
	f := mustBuild(t, genreForest())
	got := idsAt(f, f.PreOrder())
	want := []string{"Rock", "Punk", "Hardcore", "Pop Punk", "Metal", "Jazz", "Bebop", "Electronic"}
	if !slices.Equal(got, want) {
		t.Errorf("PreOrder() = %v, want %v", got, want)
	}
}

func TestPostOrder(t *testing.T) {
	f := mustBuild(t, genreForest())
	got := idsAt(f, f.PostOrder())
	want := []string{"Hardcore", "Pop Punk", "Punk", "Metal", "Rock", "Bebop", "Jazz", "Electronic"}
	if !slices.Equal(got, want) {
		t.Errorf("PostOrder() = %v, want %v", got, want)
	}
}

func TestByID_LengthMismatchPanics(t *testing.T) {
	f := mustBuild(t, scenario())
	defer func() {
		if recover() == nil {
			t.Error("ByID should panic on length mismatch")
		}
	}()
	ByID(f, []int{1, 2})
}

// genreForest is a three-root forest with mixed fan-out.
func genreForest() []Entry {
	return []Entry{
		{ID: "Rock"},
		{ID: "Punk", Parent: "Rock"},
		{ID: "Jazz"},
		{ID: "Hardcore", Parent: "Punk"},
		{ID: "Metal", Parent: "Rock"},
		{ID: "Bebop", Parent: "Jazz"},
		{ID: "Pop Punk", Parent: "Punk"},
		{ID: "Electronic"},
	}
}

func idsAt(f *Forest, idx []int) []string {
	out := make([]string, len(idx))
	for i, n := range idx {
		out[i] = f.ID(n)
	}
	return out
}
