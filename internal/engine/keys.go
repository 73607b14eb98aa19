package engine

// Action is the routing decision for one keystroke.
type Action int

const (
	// ActionIgnore drops the key.
	ActionIgnore Action = iota
	// ActionStop ends the session.
	ActionStop
	// ActionNext advances to the next question.
	ActionNext
	// ActionContinue proceeds past a boundary screen.
	ActionContinue
	// ActionDelegate hands the key to the caller as answer input.
	ActionDelegate
)

// Key names as routed. Callers normalize their input layer's key
// events to these before routing.
const (
	KeyEscape = "esc"
	KeySpace  = "space"
	KeyEnter  = "enter"
)

// RouteKey maps a keystroke to an action using only the phase and
// whether the open question is answered. Escape always stops except
// when idle. Space and Enter advance only once the question is
// answered, or past a boundary screen. Any other key is answer input
// while a question is open and unanswered, and noise otherwise.
func RouteKey(s State, key string) Action {
	if key == KeyEscape {
		if s.Phase == PhaseIdle {
			return ActionIgnore
		}
		return ActionStop
	}
	advance := key == KeySpace || key == KeyEnter
	switch s.Phase {
	case PhaseActive:
		if s.Answered {
			if advance {
				return ActionNext
			}
			return ActionIgnore
		}
		if advance {
			return ActionIgnore
		}
		return ActionDelegate
	case PhaseRoundComplete:
		if advance {
			return ActionContinue
		}
		return ActionIgnore
	case PhaseCalibrationIntro, PhaseCalibrationResults:
		if advance {
			return ActionContinue
		}
		return ActionIgnore
	case PhaseCalibrating:
		if advance {
			return ActionIgnore
		}
		return ActionDelegate
	default:
		return ActionIgnore
	}
}
