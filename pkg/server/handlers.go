package server

import (
	stderrors "errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/polytree/pkg/buildinfo"
	"github.com/matzehuels/polytree/pkg/chain"
	"github.com/matzehuels/polytree/pkg/errors"
	"github.com/matzehuels/polytree/pkg/license"
	"github.com/matzehuels/polytree/pkg/pipeline"
	"github.com/matzehuels/polytree/pkg/preset"
	"github.com/matzehuels/polytree/pkg/render/param"
)

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) error {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Get()})
	return nil
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) error {
	return errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path)
}

type presetResponse struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Description string `json:"description,omitempty"`
	Ignored     string `json:"ignored,omitempty"`
	Params      any    `json:"params"`
}

func (s *Server) presets(w http.ResponseWriter, r *http.Request) error {
	kind := r.URL.Query().Get("kind")
	if kind != "" {
		if err := pipeline.ValidateKind(kind); err != nil {
			return err
		}
	}
	out := []presetResponse{}
	for _, p := range preset.Builtin() {
		if kind != "" && p.Kind != kind {
			continue
		}
		resp := presetResponse{Name: p.Name, Kind: p.Kind, Description: p.Description, Ignored: p.Ignored}
		if p.Polymer != nil {
			resp.Params = p.Polymer
		} else {
			resp.Params = p.License
		}
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, out)
	return nil
}

func (s *Server) render(kind string) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		format := chi.URLParam(r, "format")
		if err := pipeline.ValidateFormat(format); err != nil {
			return err
		}
		input, err := readBody(w, r)
		if err != nil {
			return err
		}
		opts, err := s.options(r, kind, format)
		if err != nil {
			return err
		}

		result, err := s.runner.Execute(r.Context(), input, opts)
		if err != nil {
			return err
		}

		h := w.Header()
		h.Set("Content-Type", contentTypes[format])
		if result.CacheInfo.RenderHit {
			h.Set("X-Cache", "HIT")
		} else {
			h.Set("X-Cache", "MISS")
		}
		h.Set("X-Input-Hash", result.InputHash)
		h.Set("X-Tree-Nodes", strconv.Itoa(result.Stats.Nodes))
		if kind == pipeline.KindPolymer {
			h.Set("X-Polymer-Length", strconv.Itoa(result.Stats.Trunk))
		}
		w.WriteHeader(http.StatusOK)
		_, err = w.Write(result.Artifacts[format])
		return err
	}
}

// reserved query parameters are pipeline options, not render parameters.
var reserved = map[string]bool{
	"preset":    true,
	"viz":       true,
	"ignored":   true,
	"hide-root": true,
	"prefix":    true,
	"detailed":  true,
	"scale":     true,
}

// options builds pipeline options from the query string. A preset is
// applied first so that explicit parameters override it.
func (s *Server) options(r *http.Request, kind, format string) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.DefaultOptions(kind)
	opts.Formats = []string{format}
	opts.Strict = kind == pipeline.KindPolymer
	opts.Logger = s.loggerFrom(r.Context())

	if name := q.Get("preset"); name != "" {
		p, err := preset.Get(name)
		if err != nil {
			return opts, err
		}
		if err := opts.ApplyPreset(p); err != nil {
			return opts, err
		}
	}
	if v := q.Get("viz"); v != "" {
		opts.VizType = v
	}
	if q.Has("ignored") {
		opts.Ignored = q.Get("ignored")
	}

	var err error
	if opts.HideRoot, err = boolParam(q.Get("hide-root"), "hide-root"); err != nil {
		return opts, err
	}
	if opts.Detailed, err = boolParam(q.Get("detailed"), "detailed"); err != nil {
		return opts, err
	}
	if v := q.Get("prefix"); v != "" {
		if opts.Prefix, err = strconv.Atoi(v); err != nil {
			return opts, errors.New(errors.ErrCodeInvalidParameter, "prefix: %q is not an integer", v)
		}
	}
	if v := q.Get("scale"); v != "" {
		if opts.Scale, err = strconv.ParseFloat(v, 64); err != nil || !(opts.Scale > 0) {
			return opts, errors.New(errors.ErrCodeInvalidParameter, "scale: %q is not a positive number", v)
		}
	}

	values := make(map[string]string)
	for name := range q {
		if !reserved[name] {
			values[name] = q.Get(name)
		}
	}
	fields := opts.Polymer.Fields()
	if kind == pipeline.KindLicense {
		fields = opts.License.Fields()
	}
	if err := param.Apply(fields, values); err != nil {
		return opts, err
	}
	return opts, nil
}

func boolParam(v, name string) (bool, error) {
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.New(errors.ErrCodeInvalidParameter, "%s: %q is not a boolean", name, v)
	}
	return b, nil
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body := http.MaxBytesReader(w, r.Body, errors.MaxInputSize+1)
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.New(errors.ErrCodeInputTooLarge, "request body exceeds %d bytes", errors.MaxInputSize)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	if err := errors.ValidateInputSize(len(data)); err != nil {
		return nil, err
	}
	return data, nil
}

type polymerAnswer struct {
	Length   int    `json:"length"`
	Shortest string `json:"shortest_unit"`
	Best     int    `json:"shortest_length"`
}

type licenseAnswer struct {
	Nodes int `json:"nodes"`
	Sum   int `json:"metadata_sum"`
	Value int `json:"value"`
}

// solve answers both puzzle parts for an input.
func (s *Server) solve(w http.ResponseWriter, r *http.Request) error {
	kind := chi.URLParam(r, "kind")
	if err := pipeline.ValidateKind(kind); err != nil {
		return err
	}
	input, err := readBody(w, r)
	if err != nil {
		return err
	}

	if kind == pipeline.KindLicense {
		root, err := license.Parse(string(input))
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, licenseAnswer{Nodes: root.Count(), Sum: root.SumMetadata(), Value: root.Value()})
		return nil
	}

	seq := chain.Parse(input)
	if err := errors.ValidatePolymer(seq); err != nil {
		return err
	}
	unit, best := chain.Shortest(seq)
	writeJSON(w, http.StatusOK, polymerAnswer{
		Length:   chain.CollapsedLen(seq),
		Shortest: unit.String(),
		Best:     best,
	})
	return nil
}
