package domain

// Phase represents the lifecycle stage of a slamball match.
type Phase string

const (
	// PhaseInitializing is the pre-match state where players can still join.
	PhaseInitializing Phase = "initializing"
	// PhaseCountdown is the kickoff countdown before the ball is live.
	PhaseCountdown Phase = "countdown"
	// PhaseActive is live play with the regulation clock running.
	PhaseActive Phase = "active"
	// PhaseGoalPause is the frozen celebration interval after a goal.
	PhaseGoalPause Phase = "goal_pause"
	// PhaseSuddenDeath is overtime play where the next goal wins.
	PhaseSuddenDeath Phase = "sudden_death"
	// PhaseEnded is the terminal state after a winner is decided.
	PhaseEnded Phase = "ended"
	// PhasePostMatch is reached after the end-of-match delay; read-only.
	PhasePostMatch Phase = "post_match"
)

// Terminal reports whether the phase accepts no further match events.
func (p Phase) Terminal() bool {
	return p == PhaseEnded || p == PhasePostMatch
}

// Team identifies one of the two sides of a match.
type Team string

const (
	TeamA Team = "a"
	TeamB Team = "b"
)

// Opponent returns the other team.
func (t Team) Opponent() Team {
	if t == TeamA {
		return TeamB
	}
	return TeamA
}

// Leader is the result of comparing the two score counters.
type Leader int

const (
	LeaderTied Leader = iota
	LeaderA
	LeaderB
)

// Winner identifies the final outcome of a match.
type Winner string

const (
	WinnerNone  Winner = ""
	WinnerTeamA Winner = "team_a"
	WinnerTeamB Winner = "team_b"
	WinnerDraw  Winner = "draw"
)

// WinnerOf maps a score comparison to a match outcome.
func WinnerOf(l Leader) Winner {
	switch l {
	case LeaderA:
		return WinnerTeamA
	case LeaderB:
		return WinnerTeamB
	default:
		return WinnerDraw
	}
}
