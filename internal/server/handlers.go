package server

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/orrery/pkg/buildinfo"
	orerrors "github.com/matzehuels/orrery/pkg/errors"
	"github.com/matzehuels/orrery/pkg/pipeline"
	"github.com/matzehuels/orrery/pkg/planet"
	"github.com/matzehuels/orrery/pkg/store"
)

// layoutResponse is returned by the layout endpoints.
type layoutResponse struct {
	ID        string          `json:"id"`
	Hash      string          `json:"hash"`
	InputHash string          `json:"input_hash"`
	Cached    bool            `json:"cached"`
	Planets   json.RawMessage `json:"planets"`
	Stats     planet.Stats    `json:"stats"`
}

func snapshotResponse(snap *store.Snapshot, cached bool) layoutResponse {
	return layoutResponse{
		ID:        snap.ID,
		Hash:      snap.Hash,
		InputHash: snap.InputHash,
		Cached:    cached,
		Planets:   snap.System,
		Stats:     snap.Stats,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleCreateLayout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	opts, err := s.layoutOptions(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}

	format, err := bodyFormat(r)
	if err != nil {
		writeError(w, err)
		return
	}
	c, err := planet.Decode(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes), format)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeJSON(w, http.StatusRequestEntityTooLarge,
				errorBody("TOO_LARGE", "request body exceeds "+strconv.FormatInt(tooBig.Limit, 10)+" bytes", nil))
			return
		}
		writeError(w, err)
		return
	}

	result, err := s.runner.Execute(ctx, c, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	snap, err := store.NewSnapshot(result.System, result.InputHash, opts, s.cfg.SnapshotTTL)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.Save(ctx, snap); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Location", "/v1/layouts/"+snap.ID)
	writeJSON(w, http.StatusCreated, snapshotResponse(snap, result.CacheInfo.LayoutHit))
}

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshotResponse(snap, false))
}

func (s *Server) handleRenderLayout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	opts := pipeline.Options{Formats: []string{format}}
	if err := parseQuery(q, &opts, renderParams); err != nil {
		writeError(w, err)
		return
	}

	snap, err := s.store.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	sys, err := snap.Decode()
	if err != nil {
		writeError(w, err)
		return
	}

	artifacts, err := s.runner.Render(ctx, sys, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG:  "image/svg+xml",
}

// bodyFormat picks the decoder from Content-Type. JSON is the default.
func bodyFormat(r *http.Request) (planet.Format, error) {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return planet.FormatJSON, nil
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return "", orerrors.Wrap(orerrors.ErrCodeUnsupported, err, "bad content type %q", ct)
	}
	switch mt {
	case "application/json", "text/json":
		return planet.FormatJSON, nil
	case "application/toml", "text/toml", "application/x-toml":
		return planet.FormatTOML, nil
	}
	return "", orerrors.New(orerrors.ErrCodeUnsupported, "unsupported content type %q (use application/json or application/toml)", mt)
}

// layoutOptions starts from the server defaults and applies query overrides.
func (s *Server) layoutOptions(q url.Values) (pipeline.Options, error) {
	opts := s.cfg.Defaults
	if opts.RootsShareCircle != nil {
		share := *opts.RootsShareCircle
		opts.RootsShareCircle = &share
	}
	opts.Formats = nil
	opts.Logger = nil
	if err := parseQuery(q, &opts, layoutParams); err != nil {
		return opts, err
	}
	if err := opts.ValidateForLayout(); err != nil {
		return opts, err
	}
	return opts, nil
}

// =============================================================================
// Query Parameters
// =============================================================================

// param applies one query value. Parse failures return errBadValue and are
// reported with the parameter name by parseQuery.
type param func(o *pipeline.Options, v string) error

var errBadValue = errors.New("bad value")

var layoutParams = map[string]param{
	"mode":              func(o *pipeline.Options, v string) error { o.Mode = v; return nil },
	"root_weighting":    func(o *pipeline.Options, v string) error { o.RootWeighting = v; return nil },
	"depth_spacing":     floatParam(func(o *pipeline.Options) *float64 { return &o.DepthSpacing }),
	"base_speed":        floatParam(func(o *pipeline.Options) *float64 { return &o.BaseSpeed }),
	"epsilon":           floatParam(func(o *pipeline.Options) *float64 { return &o.Epsilon }),
	"base_distance":     floatParam(func(o *pipeline.Options) *float64 { return &o.BaseDistance }),
	"distance_per_mass": floatParam(func(o *pipeline.Options) *float64 { return &o.DistancePerMass }),
	"padding":           floatParam(func(o *pipeline.Options) *float64 { return &o.Padding }),
	"keep_input_mass":   boolParam(func(o *pipeline.Options) *bool { return &o.KeepInputMass }),
	"refresh":           boolParam(func(o *pipeline.Options) *bool { return &o.Refresh }),
	"roots_share_circle": func(o *pipeline.Options, v string) error {
		b, err := strconv.ParseBool(v)
		o.RootsShareCircle = &b
		return badValue(err)
	},
	"max_depth": func(o *pipeline.Options, v string) (err error) {
		o.MaxDepth, err = strconv.Atoi(v)
		return badValue(err)
	},
	"seed": func(o *pipeline.Options, v string) (err error) {
		o.Seed, err = strconv.ParseUint(v, 10, 64)
		return badValue(err)
	},
}

var renderParams = map[string]param{
	"format": func(o *pipeline.Options, v string) error { return nil },
	"scale":  floatParam(func(o *pipeline.Options) *float64 { return &o.Scale }),
	"labels": boolParam(func(o *pipeline.Options) *bool { return &o.Labels }),
}

// parseQuery applies known parameters and rejects unknown ones.
func parseQuery(q url.Values, o *pipeline.Options, known map[string]param) error {
	for key, vals := range q {
		set, ok := known[key]
		if !ok {
			return orerrors.New(orerrors.ErrCodeInvalidConfig, "unknown parameter %q", key)
		}
		v := vals[len(vals)-1]
		if err := set(o, v); err != nil {
			return orerrors.Wrap(orerrors.ErrCodeInvalidConfig, err, "invalid value %q for %s", v, key)
		}
	}
	return nil
}

func floatParam(field func(*pipeline.Options) *float64) param {
	return func(o *pipeline.Options, v string) (err error) {
		*field(o), err = strconv.ParseFloat(v, 64)
		return badValue(err)
	}
}

func boolParam(field func(*pipeline.Options) *bool) param {
	return func(o *pipeline.Options, v string) (err error) {
		*field(o), err = strconv.ParseBool(v)
		return badValue(err)
	}
}

func badValue(err error) error {
	if err != nil {
		return errBadValue
	}
	return nil
}
