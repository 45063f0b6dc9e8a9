// Package guide holds the step navigation rules of a build session.
//
// A blueprint with n steps has n guide positions (1..n), each showing the
// preview up to that step, followed by the control position n+1 showing the
// four elevations of the finished model. Moving back never goes below step 1.
// Moving next from the control position finishes the blueprint; the caller
// then starts a fresh one at step 1.
package guide

import (
	"github.com/assys/brickguide/pkg/errors"
)

// Direction is a navigation request from the operator.
type Direction string

const (
	Next Direction = "next"
	Back Direction = "back"
)

// ParseDirection validates a direction string.
func ParseDirection(s string) (Direction, error) {
	if err := errors.ValidateDirection(s); err != nil {
		return "", err
	}
	return Direction(s), nil
}

// Position is where an operator is within a blueprint.
type Position struct {
	Blueprint string `json:"blueprint"`
	Step      int    `json:"step"`
	Total     int    `json:"total"`
}

// Start returns step 1 of a blueprint with total steps.
func Start(blueprint string, total int) Position {
	return Position{Blueprint: blueprint, Step: 1, Total: total}
}

// InControl reports whether the position is past the last step.
func (p Position) InControl() bool { return p.Step > p.Total }

// ControlStep is the step number of the control position.
func (p Position) ControlStep() int { return p.Total + 1 }

// Normalize clamps Step into [1, Total+1].
func (p Position) Normalize() Position {
	p.Step = min(max(p.Step, 1), p.ControlStep())
	return p
}

// nextStep advances one step. From a guide step this may enter the control
// position.
func nextStep(step int) int { return step + 1 }

// backStep retreats one step, never below 1.
func backStep(step int) int { return max(1, step-1) }

// Apply moves p in direction d. restart is true when the operator moved
// next from the control position; the returned position is then unchanged
// and the caller must pick a new blueprint.
func Apply(p Position, d Direction) (next Position, restart bool, err error) {
	p = p.Normalize()
	switch d {
	case Back:
		if p.InControl() {
			p.Step = max(1, p.Total)
			return p, false, nil
		}
		p.Step = backStep(p.Step)
		return p, false, nil
	case Next:
		if p.InControl() {
			return p, true, nil
		}
		p.Step = nextStep(p.Step)
		return p, false, nil
	}
	return p, false, errors.New(errors.ErrCodeInvalidDirection, "unknown direction %q", d)
}
