package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/assys/brickguide/pkg/brick"
	"github.com/assys/brickguide/pkg/errors"
	"github.com/assys/brickguide/pkg/pipeline"
	"github.com/assys/brickguide/pkg/render"
	"github.com/assys/brickguide/pkg/voxel/view"
)

type blueprintInfo struct {
	Name  string            `json:"name"`
	Total int               `json:"total"`
	Hash  string            `json:"hash"`
	Steps []brick.Placement `json:"steps"`
}

func (s *Server) handleAPISession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.ackSession(r.Context(), r, r.URL.Query().Get("id"))
	if err != nil {
		s.apiError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleAPIList(w http.ResponseWriter, r *http.Request) {
	names, err := s.runner.Source.List(r.Context())
	if err != nil {
		s.apiError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"blueprints": names})
}

func (s *Server) handleAPIBlueprint(w http.ResponseWriter, r *http.Request) {
	bp, err := s.runner.Load(r.Context(), chi.URLParam(r, "name"), s.grid)
	if err != nil {
		s.apiError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, blueprintInfo{
		Name:  bp.Name,
		Total: bp.Len(),
		Hash:  bp.Hash(),
		Steps: bp.Steps,
	})
}

func (s *Server) handleAPIStep(w http.ResponseWriter, r *http.Request) {
	format, err := s.queryFormat(r)
	if err != nil {
		s.apiError(w, err)
		return
	}
	raw := chi.URLParam(r, "step")
	step, err := strconv.Atoi(raw)
	if err != nil {
		s.apiError(w, errors.New(errors.ErrCodeInvalidInput, "step must be a number, got %q", raw))
		return
	}
	res, err := s.runner.Step(r.Context(), pipeline.Options{
		Blueprint: chi.URLParam(r, "name"),
		Step:      step,
		Formats:   []string{format},
		Scale:     s.scale,
		Grid:      s.grid,
	})
	if err != nil {
		s.apiError(w, err)
		return
	}
	writeImage(w, res.Artifacts[format])
}

func (s *Server) handleAPIControl(w http.ResponseWriter, r *http.Request) {
	format, err := s.queryFormat(r)
	if err != nil {
		s.apiError(w, err)
		return
	}
	dir := view.Direction(chi.URLParam(r, "direction"))
	if _, ok := view.TransformFor(dir); !ok {
		s.apiError(w, errors.New(errors.ErrCodeInvalidDirection, "view must be front, back, left or right, got %q", dir))
		return
	}
	res, err := s.runner.Control(r.Context(), pipeline.Options{
		Blueprint: chi.URLParam(r, "name"),
		Formats:   []string{format},
		Scale:     s.scale,
		Grid:      s.grid,
	})
	if err != nil {
		s.apiError(w, err)
		return
	}
	img, _ := res.Views[format].Get(dir)
	w.Header().Set("X-Model-Layers", strconv.Itoa(res.Layers))
	writeImage(w, img)
}

func (s *Server) handleAPISupport(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	res, err := s.runner.Support(r.Context(), pipeline.Options{
		Blueprint: chi.URLParam(r, "name"),
		Formats:   []string{format},
		Grid:      s.grid,
		Detailed:  r.URL.Query().Get("detailed") == "true",
	})
	if err != nil {
		s.apiError(w, err)
		return
	}
	contentType := "text/vnd.graphviz; charset=utf-8"
	if format == pipeline.FormatSVG {
		contentType = render.FormatSVG.MIMEType()
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(res.Artifacts[format])
}

// queryFormat reads ?format=, defaulting to the server's page format.
func (s *Server) queryFormat(r *http.Request) (string, error) {
	format := r.URL.Query().Get("format")
	if format == "" {
		return s.format, nil
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		return "", err
	}
	return format, nil
}

func writeImage(w http.ResponseWriter, img render.Image) {
	w.Header().Set("Content-Type", img.MIMEType())
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	_, _ = w.Write(img.Data)
}
