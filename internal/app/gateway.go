package app

import "slamball/internal/domain"

// EffectKind identifies a presentation cue sent through the gateway.
type EffectKind string

const (
	EffectCountdownTick   EffectKind = "countdown_tick"
	EffectCommence        EffectKind = "commence"
	EffectGoalScored      EffectKind = "goal_scored"
	EffectGoldenGoalStart EffectKind = "golden_goal_start"
	EffectMatchEnd        EffectKind = "match_end"
	EffectWarning         EffectKind = "warning"
)

// Effect is a single fire-and-forget presentation cue. Only the fields
// relevant to the kind are set.
type Effect struct {
	Kind   EffectKind
	Value  int           // countdown step, or seconds left for warnings
	Team   domain.Team   // scoring team for goal cues
	Winner domain.Winner // outcome for match-end cues
}

func CountdownTick(value int) Effect { return Effect{Kind: EffectCountdownTick, Value: value} }
func Commence() Effect               { return Effect{Kind: EffectCommence} }
func GoalScored(team domain.Team) Effect {
	return Effect{Kind: EffectGoalScored, Team: team}
}
func GoldenGoalStart() Effect { return Effect{Kind: EffectGoldenGoalStart} }
func MatchEnd(winner domain.Winner) Effect {
	return Effect{Kind: EffectMatchEnd, Winner: winner}
}
func Warning(secondsLeft int) Effect { return Effect{Kind: EffectWarning, Value: secondsLeft} }

// Gateway is the outbound-only interface to the presentation and
// player/ball collaborators. Calls are fire-and-forget; the
// orchestrator never consumes a return value.
type Gateway interface {
	// ResetForKickoff repositions the ball and every live player onto
	// their spawn points and replenishes partial resources.
	ResetForKickoff(ballSpawn domain.Vec, teamASpawns, teamBSpawns []domain.Vec)
	// SetInputFrozen toggles input for all live roster entities.
	SetInputFrozen(frozen bool)
	// PlayEffect triggers a presentation cue.
	PlayEffect(effect Effect)
}
