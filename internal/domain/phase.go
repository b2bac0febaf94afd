package domain

// Phase represents the current phase of a game
type Phase string

const (
	PhaseNotStarted Phase = "NOT_STARTED" // Waiting for someone to press start
	PhaseInProgress Phase = "IN_PROGRESS" // Turns are being played, timer running
	PhaseGameOver   Phase = "GAME_OVER"   // A score reached zero
)

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}

// CanTransitionTo checks if a transition from current phase to target phase is valid
func (p Phase) CanTransitionTo(target Phase) bool {
	validTransitions := map[Phase][]Phase{
		PhaseNotStarted: {PhaseInProgress},
		PhaseInProgress: {PhaseGameOver, PhaseNotStarted}, // Restart is unguarded
		PhaseGameOver:   {PhaseNotStarted},
	}

	allowed, ok := validTransitions[p]
	if !ok {
		return false
	}

	for _, phase := range allowed {
		if phase == target {
			return true
		}
	}
	return false
}
