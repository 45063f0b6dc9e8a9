package server

import (
	"context"
	"net/url"
	"strconv"

	"github.com/assys/brickguide/pkg/blueprint"
	"github.com/assys/brickguide/pkg/errors"
	"github.com/assys/brickguide/pkg/guide"
	"github.com/assys/brickguide/pkg/observability"
	"github.com/assys/brickguide/pkg/session"
)

// pickBlueprint starts a random blueprint at step 1.
func (s *Server) pickBlueprint(ctx context.Context) (guide.Position, error) {
	s.rngMu.Lock()
	name, err := blueprint.Random(ctx, s.runner.Source, s.rng)
	s.rngMu.Unlock()
	if err != nil {
		return guide.Position{}, err
	}
	return s.startAt(ctx, name)
}

// startAt positions a guide at step 1 of name.
func (s *Server) startAt(ctx context.Context, name string) (guide.Position, error) {
	bp, err := s.runner.Load(ctx, name, s.grid)
	if err != nil {
		return guide.Position{}, err
	}
	return guide.Start(bp.Name, bp.Len()), nil
}

// position resolves a blueprint name and a step into a normalized position.
func (s *Server) position(ctx context.Context, name string, step int) (guide.Position, error) {
	bp, err := s.runner.Load(ctx, name, s.grid)
	if err != nil {
		return guide.Position{}, err
	}
	return guide.Position{Blueprint: bp.Name, Step: step, Total: bp.Len()}.Normalize(), nil
}

// move applies d to pos, starting a new random blueprint when the operator
// moves past the control page.
func (s *Server) move(ctx context.Context, pos guide.Position, d guide.Direction) (next guide.Position, restarted bool, err error) {
	next, restart, err := guide.Apply(pos, d)
	if err != nil {
		return pos, false, err
	}
	if !restart {
		return next, false, nil
	}
	next, err = s.pickBlueprint(ctx)
	if err != nil {
		return pos, false, err
	}
	observability.Guide().OnSession(ctx, "restart")
	return next, true, nil
}

// newSession creates a session at pos and publishes it.
func (s *Server) newSession(ctx context.Context, operator string, pos guide.Position) (*session.Session, error) {
	sess := session.New(operator, pos, s.ttl)
	if err := s.publish(ctx, sess, pos); err != nil {
		return nil, err
	}
	observability.Guide().OnSession(ctx, "log_in")
	s.logger.Info("session started", "session", sess.ID, "operator", operator, "blueprint", pos.Blueprint, "total", pos.Total)
	return sess, nil
}

// publish stores sess at its new position and tells everyone watching:
// the metrics hooks, open pages and the pick-by-light strip.
func (s *Server) publish(ctx context.Context, sess *session.Session, pos guide.Position) error {
	sess.Position = pos
	sess.Touch(s.ttl)
	if err := s.sessions.Set(ctx, sess); err != nil {
		return errors.Wrap(errors.ErrCodeUnavailable, err, "save session")
	}
	observability.Guide().OnStep(ctx, pos.Blueprint, pos.Step, pos.Total)
	s.hub.Broadcast(Update{
		Session:   sess.ID,
		Blueprint: pos.Blueprint,
		Step:      pos.Step,
		Total:     pos.Total,
		Control:   pos.InControl(),
		URL:       pageURL(pos),
	})
	s.signal(ctx, pos)
	return nil
}

// signal lights the bin of the brick placed at pos. Failures are logged;
// a dark strip never blocks the guide.
func (s *Server) signal(ctx context.Context, pos guide.Position) {
	if pos.InControl() {
		if err := s.picker.Clear(ctx); err != nil {
			s.logger.Warn("clear pick light", "err", err)
		}
		return
	}
	bp, err := s.runner.Load(ctx, pos.Blueprint, s.grid)
	if err != nil || pos.Step > bp.Len() {
		return
	}
	placement := bp.Steps[pos.Step-1]
	bin, found, err := s.picker.Pick(ctx, placement)
	switch {
	case err != nil:
		s.logger.Warn("pick light", "err", err)
	case !found:
		s.logger.Debug("no bin holds brick", "brick", placement.String())
	default:
		s.logger.Debug("bin lit", "location", bin.Location, "brick", placement.String())
	}
}

// pageURL is the page showing pos.
func pageURL(pos guide.Position) string {
	q := url.Values{}
	q.Set("blueprint", pos.Blueprint)
	if pos.InControl() {
		return "/control?" + q.Encode()
	}
	q.Set("step", strconv.Itoa(pos.Step))
	return "/blueprint?" + q.Encode()
}
