package server

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/assys/brickguide/pkg/brick"
	"github.com/assys/brickguide/pkg/errors"
	"github.com/assys/brickguide/pkg/guide"
	"github.com/assys/brickguide/pkg/observability"
	"github.com/assys/brickguide/pkg/pickbylight"
	"github.com/assys/brickguide/pkg/pipeline"
	"github.com/assys/brickguide/pkg/session"
)

const maxAckBody = 1 << 16

// Page data.

type indexPage struct {
	Session *session.Session
	URL     string
}

type stepPage struct {
	Blueprint string
	Step      int
	Total     int
	Placement brick.Placement
	Image     template.URL
	Bin       *pickbylight.Bin
	SessionID string
}

type controlView struct {
	Name  string
	Image template.URL
}

type controlPage struct {
	Blueprint string
	Step      int
	Total     int
	Layers    int
	Views     []controlView
	SessionID string
}

type storagePage struct {
	Bins      []pickbylight.Bin
	Locations int
	Form      storageForm
	Error     string
}

type storageForm struct {
	Color    string
	Length   string
	Width    string
	Location string
	Count    string
}

type errorPage struct {
	Status  int
	Message string
}

// Pages.

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := indexPage{}
	if sess := s.cookieSession(r); sess != nil {
		data.Session = sess
		data.URL = pageURL(sess.Position)
	}
	s.renderPage(w, r, http.StatusOK, "index.html", data)
}

func (s *Server) handleLogIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		s.pageError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse form"))
		return
	}
	pos, err := s.pickBlueprint(ctx)
	if err != nil {
		s.pageError(w, r, err)
		return
	}

	s.navMu.Lock()
	sess, err := s.newSession(ctx, strings.TrimSpace(r.PostFormValue("operator")), pos)
	s.navMu.Unlock()
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	s.setCookie(w, sess.ID)
	http.Redirect(w, r, pageURL(pos), http.StatusSeeOther)
}

func (s *Server) handleLogOff(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if sess := s.cookieSession(r); sess != nil {
		if err := s.sessions.Delete(ctx, sess.ID); err != nil {
			s.logger.Warn("delete session", "session", sess.ID, "err", err)
		}
		observability.Guide().OnSession(ctx, "log_off")
		s.logger.Info("session ended", "session", sess.ID, "operator", sess.Operator)
	}
	if err := s.picker.Clear(ctx); err != nil {
		s.logger.Warn("clear pick light", "err", err)
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleBlueprintGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	name := q.Get("blueprint")
	if name == "" {
		s.redirectToSession(w, r)
		return
	}
	raw := q.Get("step")
	if raw == "" {
		http.Redirect(w, r, pageURL(guide.Start(name, 1)), http.StatusFound)
		return
	}
	step, err := strconv.Atoi(raw)
	if err != nil {
		s.pageError(w, r, errors.New(errors.ErrCodeInvalidInput, "step must be a number, got %q", raw))
		return
	}
	pos, err := s.position(ctx, name, step)
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	if pos.Step != step || pos.InControl() {
		http.Redirect(w, r, pageURL(pos), http.StatusFound)
		return
	}

	res, err := s.runner.Step(ctx, pipeline.Options{
		Blueprint: pos.Blueprint,
		Step:      pos.Step,
		Formats:   []string{s.format},
		Scale:     s.scale,
		Grid:      s.grid,
	})
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	data := stepPage{
		Blueprint: res.Blueprint,
		Step:      res.Step,
		Total:     res.Total,
		Placement: res.Placement,
		Image:     template.URL(res.Artifacts[s.format].DataURI()),
		SessionID: s.cookieID(r),
	}
	if bin, ok := s.picker.Storage.Locate(res.Placement); ok {
		data.Bin = &bin
	}
	s.renderPage(w, r, http.StatusOK, "blueprint.html", data)
}

func (s *Server) handleControlGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := r.URL.Query().Get("blueprint")
	if name == "" {
		s.redirectToSession(w, r)
		return
	}
	res, err := s.runner.Control(ctx, pipeline.Options{
		Blueprint: name,
		Formats:   []string{s.format},
		Scale:     s.scale,
		Grid:      s.grid,
	})
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	views := res.Views[s.format]
	data := controlPage{
		Blueprint: res.Blueprint,
		Step:      res.Total + 1,
		Total:     res.Total,
		Layers:    res.Layers,
		SessionID: s.cookieID(r),
		Views: []controlView{
			{Name: "Front", Image: template.URL(views.Front.DataURI())},
			{Name: "Back", Image: template.URL(views.Back.DataURI())},
			{Name: "Left", Image: template.URL(views.Left.DataURI())},
			{Name: "Right", Image: template.URL(views.Right.DataURI())},
		},
	}
	s.renderPage(w, r, http.StatusOK, "control.html", data)
}

func (s *Server) handleBlueprintPost(w http.ResponseWriter, r *http.Request) {
	s.navigateForm(w, r, false)
}

func (s *Server) handleControlPost(w http.ResponseWriter, r *http.Request) {
	s.navigateForm(w, r, true)
}

// navigateForm handles the back and next buttons of the guide pages. The
// form carries blueprint, direction and, on step pages, the current step.
// A logged-in operator's session follows the move.
func (s *Server) navigateForm(w http.ResponseWriter, r *http.Request, control bool) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		s.pageError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse form"))
		return
	}
	dir, err := guide.ParseDirection(r.PostFormValue("direction"))
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	name := r.PostFormValue("blueprint")
	if err := errors.ValidateBlueprintName(name); err != nil {
		s.pageError(w, r, err)
		return
	}
	step := math.MaxInt
	if !control {
		step, err = strconv.Atoi(r.PostFormValue("step"))
		if err != nil {
			s.pageError(w, r, errors.New(errors.ErrCodeInvalidInput, "step must be a number"))
			return
		}
	}

	s.navMu.Lock()
	defer s.navMu.Unlock()
	pos, err := s.position(ctx, name, step)
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	next, _, err := s.move(ctx, pos, dir)
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	observability.Guide().OnAcknowledge(ctx, "web", string(dir))
	if sess := s.cookieSession(r); sess != nil {
		if err := s.publish(ctx, sess, next); err != nil {
			s.pageError(w, r, err)
			return
		}
	}
	http.Redirect(w, r, pageURL(next), http.StatusSeeOther)
}

func (s *Server) redirectToSession(w http.ResponseWriter, r *http.Request) {
	if sess := s.cookieSession(r); sess != nil {
		http.Redirect(w, r, pageURL(sess.Position), http.StatusFound)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// Acknowledgments.

type ackRequest struct {
	Type      string `json:"type"`
	Direction string `json:"direction"`
	Session   string `json:"session,omitempty"`
}

type ackResponse struct {
	Status    string `json:"status"`
	Session   string `json:"session"`
	Blueprint string `json:"blueprint"`
	Step      int    `json:"step"`
	Total     int    `json:"total"`
	Control   bool   `json:"control"`
	Restarted bool   `json:"restarted"`
	URL       string `json:"url"`
}

// handleAckProbe answers input clients checking that the server is up.
func (s *Server) handleAckProbe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAck moves a session one step. An empty body is a gesture "next"
// for the most recently active session.
func (s *Server) handleAck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := decodeAck(r.Body)
	if err != nil {
		s.apiError(w, err)
		return
	}
	dir, err := guide.ParseDirection(req.Direction)
	if err != nil {
		s.apiError(w, err)
		return
	}

	s.navMu.Lock()
	defer s.navMu.Unlock()
	sess, err := s.ackSession(ctx, r, req.Session)
	if err != nil {
		s.apiError(w, err)
		return
	}
	next, restarted, err := s.move(ctx, sess.Position, dir)
	if err != nil {
		s.apiError(w, err)
		return
	}
	sess.LastAck = &session.Ack{Type: req.Type, Direction: dir, At: time.Now()}
	if err := s.publish(ctx, sess, next); err != nil {
		s.apiError(w, err)
		return
	}
	observability.Guide().OnAcknowledge(ctx, req.Type, string(dir))
	s.logger.Info("acknowledged",
		"session", sess.ID,
		"type", req.Type,
		"direction", dir,
		"blueprint", next.Blueprint,
		"step", next.Step,
		"total", next.Total)

	writeJSON(w, http.StatusOK, ackResponse{
		Status:    "ok",
		Session:   sess.ID,
		Blueprint: next.Blueprint,
		Step:      next.Step,
		Total:     next.Total,
		Control:   next.InControl(),
		Restarted: restarted,
		URL:       pageURL(next),
	})
}

func decodeAck(body io.Reader) (ackRequest, error) {
	req := ackRequest{Type: "gesture", Direction: string(guide.Next)}
	data, err := io.ReadAll(io.LimitReader(body, maxAckBody))
	if err != nil {
		return req, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid acknowledgment")
	}
	if req.Type == "" {
		req.Type = "gesture"
	}
	if req.Direction == "" {
		req.Direction = string(guide.Next)
	}
	switch req.Type {
	case "gesture", "voice":
	default:
		return req, errors.New(errors.ErrCodeInvalidInput, "type must be gesture or voice, got %q", req.Type)
	}
	return req, nil
}

// ackSession picks the session an acknowledgment applies to: the one named
// in the request, the caller's cookie session, or the latest active one.
func (s *Server) ackSession(ctx context.Context, r *http.Request, id string) (*session.Session, error) {
	if id == "" {
		id = s.cookieID(r)
	}
	if id != "" {
		sess, err := s.sessions.Get(ctx, id)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "load session")
		}
		if sess == nil {
			return nil, errors.New(errors.ErrCodeSessionNotFound, "session %q not found or expired", id)
		}
		return sess, nil
	}
	sess, err := s.sessions.Latest(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "load session")
	}
	if sess == nil {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "no active session")
	}
	return sess, nil
}

// Brick storage.

func (s *Server) handleStorageGet(w http.ResponseWriter, r *http.Request) {
	s.renderStorage(w, r, http.StatusOK, storageForm{}, "")
}

func (s *Server) handleStoragePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderStorage(w, r, http.StatusBadRequest, storageForm{}, "Invalid form")
		return
	}
	form := storageForm{
		Color:    strings.TrimSpace(r.PostFormValue("color")),
		Length:   strings.TrimSpace(r.PostFormValue("length")),
		Width:    strings.TrimSpace(r.PostFormValue("width")),
		Location: strings.TrimSpace(r.PostFormValue("location")),
		Count:    strings.TrimSpace(r.PostFormValue("count")),
	}

	if r.PostFormValue("action") == "remove" {
		loc, err := strconv.Atoi(form.Location)
		if err != nil {
			s.renderStorage(w, r, http.StatusBadRequest, form, "Location must be a number")
			return
		}
		s.picker.Storage.Remove(loc)
		s.logger.Info("bin removed", "location", loc)
		http.Redirect(w, r, "/brick_storage", http.StatusSeeOther)
		return
	}

	bin, err := form.bin()
	if err == nil {
		err = s.picker.Storage.Add(bin)
	}
	if err != nil {
		s.renderStorage(w, r, http.StatusBadRequest, form, errors.UserMessage(err))
		return
	}
	s.logger.Info("bin stored",
		"location", bin.Location,
		"color", bin.Color,
		"size", strconv.Itoa(bin.Width)+"x"+strconv.Itoa(bin.Length),
		"count", bin.Count)
	http.Redirect(w, r, "/brick_storage", http.StatusSeeOther)
}

func (f storageForm) bin() (pickbylight.Bin, error) {
	b := pickbylight.Bin{Color: f.Color}
	fields := []struct {
		name     string
		raw      string
		dst      *int
		optional bool
	}{
		{"length", f.Length, &b.Length, false},
		{"width", f.Width, &b.Width, false},
		{"location", f.Location, &b.Location, false},
		{"count", f.Count, &b.Count, true},
	}
	for _, fd := range fields {
		if fd.raw == "" && fd.optional {
			continue
		}
		n, err := strconv.Atoi(fd.raw)
		if err != nil {
			return pickbylight.Bin{}, errors.New(errors.ErrCodeInvalidInput, "%s must be a whole number", fd.name)
		}
		*fd.dst = n
	}
	return b, nil
}

func (s *Server) renderStorage(w http.ResponseWriter, r *http.Request, status int, form storageForm, msg string) {
	s.renderPage(w, r, status, "brick_storage.html", storagePage{
		Bins:      s.picker.Storage.Bins(),
		Locations: s.picker.Storage.Locations(),
		Form:      form,
		Error:     msg,
	})
}

// Sessions and responses.

func (s *Server) cookieID(r *http.Request) string {
	c, err := r.Cookie(sessionCookie)
	if err != nil || !session.ValidID(c.Value) {
		return ""
	}
	return c.Value
}

// cookieSession returns the caller's live session, or nil.
func (s *Server) cookieSession(r *http.Request) *session.Session {
	id := s.cookieID(r)
	if id == "" {
		return nil
	}
	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		s.logger.Warn("load session", "session", id, "err", err)
		return nil
	}
	return sess
}

func (s *Server) setCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("render page", "page", name, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) pageError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.StatusCode(err)
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	s.renderPage(w, r, status, "error.html", errorPage{Status: status, Message: errors.UserMessage(err)})
}

func (s *Server) apiError(w http.ResponseWriter, err error) {
	status := errors.StatusCode(err)
	if status >= 500 {
		s.logger.Error("request failed", "err", err)
	}
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, map[string]string{
		"error":   string(code),
		"message": errors.UserMessage(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
