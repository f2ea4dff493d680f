package app

import "slamball/internal/domain"

// EventKind identifies emitted match events for dispatch to consumers
// (HUD, stats, rematch flow).
type EventKind string

const (
	EventPhaseChanged     EventKind = "phase_changed"
	EventScoreUpdated     EventKind = "score_updated"
	EventMatchEnded       EventKind = "match_ended"
	EventPostMatchReady   EventKind = "post_match_ready"
	EventPlayerRemoved    EventKind = "player_removed"
	EventSoftPauseStarted EventKind = "soft_pause_started"
	EventPlayResumed      EventKind = "play_resumed"
)

// Event is a match notification produced by the orchestrator. Events
// are handed to the caller in the order they occurred and are always
// broadcast to every consumer.
type Event struct {
	Kind    EventKind
	Payload any
}

type PhaseChangedPayload struct {
	Phase       domain.Phase `json:"phase"`
	SuddenDeath bool         `json:"sudden_death"`
}

type ScoreUpdatedPayload struct {
	ScoringTeam domain.Team `json:"scoring_team"`
	ScoreA      uint        `json:"score_a"`
	ScoreB      uint        `json:"score_b"`
}

type MatchEndedPayload struct {
	Winner       domain.Winner `json:"winner"`
	ScoreA       uint          `json:"score_a"`
	ScoreB       uint          `json:"score_b"`
	SuddenDeath  bool          `json:"sudden_death"`
	TimePlayedMs int64         `json:"time_played_ms"`
}

type PlayerRemovedPayload struct {
	EntityID string      `json:"entity_id"`
	Team     domain.Team `json:"team"`
}

type SoftPauseStartedPayload struct {
	GraceMs int64 `json:"grace_ms"`
}
