package domain

import "time"

// Pending tags the single outstanding timed transition of a match.
// Timed sequences are deadlines advanced by the tick entry point, never
// background timers, so at most one of these is armed at a time.
type Pending string

const (
	PendingNone          Pending = ""
	PendingCountdownStep Pending = "countdown_step"
	PendingCelebration   Pending = "celebration"
	PendingMiniCountdown Pending = "mini_countdown_step"
	PendingPostMatch     Pending = "post_match"
)

// Match is the authoritative state of one slamball match. It is owned
// and mutated exclusively by the orchestrator service; everything else
// gets read-only access through the query methods.
type Match struct {
	Phase  Phase
	Clock  Clock
	Score  Scoreboard
	Roster *Roster

	SuddenDeath bool
	Frozen      bool
	Winner      Winner
	Elapsed     time.Duration

	// Pending timed transition: Wait counts down to the continuation
	// identified by Pending. CountdownValue is the discrete glyph value
	// during (mini-)countdowns.
	Pending        Pending
	Wait           time.Duration
	CountdownValue int

	// LeadsToEnd marks a goal pause that concludes the match instead of
	// resuming play.
	LeadsToEnd bool

	// Soft pause overlay after a participant is lost. While it is up the
	// pending transition and the clock are suspended, not cancelled.
	SoftPaused     bool
	GraceRemaining time.Duration

	// LastWarnSecond is the most recent whole second a low-clock warning
	// fired for, so a warning fires once per boundary and not per tick.
	LastWarnSecond int
}

// NewMatch creates a match in the initializing phase with a full,
// paused regulation clock and an empty roster.
func NewMatch(regulation time.Duration) *Match {
	return &Match{
		Phase:  PhaseInitializing,
		Clock:  NewClock(regulation),
		Roster: BuildRoster(nil, nil),
	}
}

// CurrentPhase returns the lifecycle phase.
func (m *Match) CurrentPhase() Phase { return m.Phase }

// RemainingTime returns the regulation time left, or ClockDisabled once
// sudden death has switched the countdown off.
func (m *Match) RemainingTime() time.Duration { return m.Clock.Remaining() }

// ScoreA returns team A's goal count.
func (m *Match) ScoreA() uint { return m.Score.TeamAGoals() }

// ScoreB returns team B's goal count.
func (m *Match) ScoreB() uint { return m.Score.TeamBGoals() }

// IsSuddenDeath reports whether golden-goal overtime is (or was) active.
func (m *Match) IsSuddenDeath() bool { return m.SuddenDeath }

// IsEnded reports whether the match has reached a terminal phase.
func (m *Match) IsEnded() bool { return m.Phase.Terminal() }

// TimePlayed returns how long the ball has been live across the match.
func (m *Match) TimePlayed() time.Duration { return m.Elapsed }
