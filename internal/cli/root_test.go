package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orerrors "github.com/matzehuels/orrery/pkg/errors"
	"github.com/matzehuels/orrery/pkg/observability"
	"github.com/matzehuels/orrery/pkg/pipeline"
	"github.com/matzehuels/orrery/pkg/planet"
)

const scenario = `{
  "R": {"color": "gold"},
  "A": {"parent": "R"},
  "B": {"parent": "R"},
  "C": {"parent": "B"}
}`

// isolate runs the test in an empty directory with its own home and cache.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Cleanup(observability.Reset)
	return dir
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(name, []byte(content), 0o644))
	return name
}

// run executes the CLI in-process and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := captureOutput(t)

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs(args)
	root.SetOut(buf)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func readPlanets(t *testing.T, path string) map[string]map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestLayoutCommand(t *testing.T) {
	isolate(t)
	writeFile(t, "genres.json", scenario)

	stdout, err := run(t, "layout", "genres.json")
	require.NoError(t, err)
	assert.Contains(t, stdout, "genres.planets.json")
	assert.Contains(t, stdout, "4 bodies")
	assert.Contains(t, stdout, iconFresh)

	planets := readPlanets(t, "genres.planets.json")
	assert.Equal(t, 200.0, planets["R"]["r"])
	assert.Equal(t, 600.0, planets["C"]["r"])
	assert.Equal(t, 3.0, planets["C"]["depth"])
	assert.Equal(t, "gold", planets["R"]["color"])

	stdout, err = run(t, "layout", "genres.json")
	require.NoError(t, err)
	assert.Contains(t, stdout, iconCached)
}

func TestLayoutCommand_TOML(t *testing.T) {
	isolate(t)
	writeFile(t, "genres.toml", "[R]\n\n[A]\nparent = \"R\"\n")

	_, err := run(t, "layout", "genres.toml", "-o", "out.json", "--no-cache")
	require.NoError(t, err)

	planets := readPlanets(t, "out.json")
	assert.Equal(t, 400.0, planets["A"]["r"])
}

func TestLayoutCommand_ConfigAndFlags(t *testing.T) {
	isolate(t)
	writeFile(t, "genres.json", scenario)
	writeFile(t, ".orrery.toml", "[layout]\ndepth_spacing = 100\n")

	_, err := run(t, "layout", "genres.json", "--no-cache")
	require.NoError(t, err)
	assert.Equal(t, 300.0, readPlanets(t, "genres.planets.json")["C"]["r"])

	_, err = run(t, "layout", "genres.json", "--no-cache", "--depth-spacing", "50")
	require.NoError(t, err)
	assert.Equal(t, 150.0, readPlanets(t, "genres.planets.json")["C"]["r"])
}

func TestLayoutCommand_Jitter(t *testing.T) {
	isolate(t)
	writeFile(t, "genres.json", scenario)

	_, err := run(t, "layout", "genres.json", "--mode", "jitter", "--seed", "7", "-o", "a.json")
	require.NoError(t, err)
	_, err = run(t, "layout", "genres.json", "--mode", "jitter", "--seed", "7", "-o", "b.json", "--no-cache")
	require.NoError(t, err)

	a, b := readPlanets(t, "a.json"), readPlanets(t, "b.json")
	assert.Equal(t, a, b)
	assert.Contains(t, a["C"], "x")
	assert.NotContains(t, a["C"], "r")
}

func TestLoadSystem_PlanetsFileUsesMode(t *testing.T) {
	isolate(t)
	writeFile(t, "radii.json", `{"A": {"r": 5}, "B": {"parent": "A"}}`)

	_, err := run(t, "layout", "radii.json", "--mode", "jitter", "--no-cache")
	require.NoError(t, err)

	sys, err := loadSystem(context.Background(), nil, "radii.planets.json", pipeline.Options{Mode: pipeline.ModeJitter})
	require.NoError(t, err)
	assert.Equal(t, planet.ModeJitter, sys.Mode)
	b, ok := sys.Get("B")
	require.True(t, ok)
	assert.NotZero(t, b.Size)
	assert.Equal(t, readPlanets(t, "radii.planets.json")["B"]["x"], b.Position.X)
}

func TestLayoutCommand_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		args  []string
		code  orerrors.Code
	}{
		{"cycle", `{"X": {"parent": "Y"}, "Y": {"parent": "X"}}`, nil, orerrors.ErrCodeCycle},
		{"dangling", `{"X": {"parent": "nope"}}`, nil, orerrors.ErrCodeDanglingReference},
		{"empty", `{}`, nil, orerrors.ErrCodeEmptyForest},
		{"schema", `[1, 2]`, nil, orerrors.ErrCodeSchema},
		{"bad mode", scenario, []string{"--mode", "spiral"}, orerrors.ErrCodeInvalidConfig},
		{"too deep", scenario, []string{"--max-depth", "2"}, orerrors.ErrCodeRecursionLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			writeFile(t, "in.json", tt.input)

			_, err := run(t, append([]string{"layout", "in.json", "--no-cache"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, tt.code, orerrors.GetCode(err), "err: %v", err)
			assert.NoFileExists(t, "in.planets.json")
		})
	}
}

func TestLayoutCommand_MissingFile(t *testing.T) {
	isolate(t)

	_, err := run(t, "layout", "missing.json")
	assert.True(t, orerrors.Is(err, orerrors.ErrCodeFileNotFound), "err: %v", err)
}

func TestInferCommand(t *testing.T) {
	isolate(t)
	writeFile(t, "names.json", `[{"name": "Rock"}, {"name": "Punk Rock", "year": 1974}, {"name": "Jazz"}]`)

	stdout, err := run(t, "infer", "names.json")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Inferred 1 parent links")

	tree := readPlanets(t, "names.hierarchy.json")
	assert.Nil(t, tree["Rock"]["parent"])
	assert.Equal(t, "Rock", tree["Punk Rock"]["parent"])
	assert.Equal(t, 1974.0, tree["Punk Rock"]["year"])
	assert.NotContains(t, tree["Punk Rock"], "name")

	_, err = run(t, "layout", "names.hierarchy.json", "--no-cache")
	require.NoError(t, err)
	assert.Equal(t, 2.0, readPlanets(t, "names.hierarchy.planets.json")["Punk Rock"]["depth"])
}

func TestInferCommand_Stdin(t *testing.T) {
	isolate(t)
	buf := captureOutput(t)

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs([]string{"infer", "-"})
	root.SetIn(strings.NewReader(`[{"name": "Rock"}, {"name": "Rockabilly"}]`))
	root.SetOut(buf)
	require.NoError(t, root.ExecuteContext(context.Background()))

	var tree map[string]map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &tree))
	assert.Equal(t, "Rock", tree["Rockabilly"]["parent"])
}

func TestStatsCommand_JSON(t *testing.T) {
	isolate(t)
	writeFile(t, "genres.json", scenario)

	stdout, err := run(t, "stats", "genres.json", "--json", "--no-cache")
	require.NoError(t, err)

	var st struct {
		Bodies int `json:"bodies"`
		Roots  int `json:"roots"`
		Leaves int `json:"leaves"`
		Rings  []struct {
			Depth  int     `json:"depth"`
			Radius float64 `json:"radius"`
			Bodies int     `json:"bodies"`
		} `json:"rings"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &st))
	assert.Equal(t, 4, st.Bodies)
	assert.Equal(t, 1, st.Roots)
	assert.Equal(t, 2, st.Leaves)
	require.Len(t, st.Rings, 3)
	assert.Equal(t, 2, st.Rings[1].Bodies)
	assert.Equal(t, 400.0, st.Rings[1].Radius)
}

func TestStatsCommand_Table(t *testing.T) {
	isolate(t)
	writeFile(t, "genres.json", scenario)
	_, err := run(t, "layout", "genres.json")
	require.NoError(t, err)

	stdout, err := run(t, "stats", "genres.planets.json")
	require.NoError(t, err)
	for _, want := range []string{"Bodies", "DEPTH", "RADIUS", "600"} {
		assert.Contains(t, stdout, want)
	}
}

func TestVisualizeCommand_DOT(t *testing.T) {
	isolate(t)
	writeFile(t, "genres.json", scenario)

	_, err := run(t, "visualize", "genres.json", "--dot", "--labels")
	require.NoError(t, err)

	data, err := os.ReadFile("genres.dot")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("graph orrery")), "got %q", data)
	assert.Contains(t, string(data), `xlabel="C"`)
}

func TestCacheCommands(t *testing.T) {
	dir := isolate(t)
	writeFile(t, "genres.json", scenario)

	stdout, err := run(t, "cache", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cache", appName), strings.TrimSpace(stdout))

	_, err = run(t, "layout", "genres.json")
	require.NoError(t, err)

	stdout, err = run(t, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Cleared 1 cached entries")

	stdout, err = run(t, "layout", "genres.json")
	require.NoError(t, err)
	assert.Contains(t, stdout, iconFresh)
}

func TestRootCommand_BadConfig(t *testing.T) {
	isolate(t)
	writeFile(t, ".orrery.toml", "[layout]\nmode = \"spiral\"\n")

	_, err := run(t, "cache", "path")
	assert.True(t, orerrors.Is(err, orerrors.ErrCodeInvalidConfig), "err: %v", err)
}

func TestCompletionCommand(t *testing.T) {
	isolate(t)
	for _, shell := range completionShells() {
		t.Run(shell, func(t *testing.T) {
			stdout, err := run(t, "completion", shell)
			require.NoError(t, err)
			assert.Contains(t, stdout, "orrery")
		})
	}

	_, err := run(t, "completion", "tcsh")
	assert.Error(t, err)
}
