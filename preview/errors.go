package preview

import "github.com/pkg/errors"

// ErrModelNotLoaded is returned by every engine operation called before Load.
var ErrModelNotLoaded = errors.New("the robot model was not loaded")

// ErrEmptyControl is returned when a preview control has no phases.
var ErrEmptyControl = errors.New("preview control has no phases")

func (e *Engine) checkLoaded(op string) error {
	if !e.loaded {
		e.logger.Errorw("cannot run preview operation", "op", op, "error", ErrModelNotLoaded)
		return ErrModelNotLoaded
	}
	return nil
}
