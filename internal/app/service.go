package app

import (
	"errors"
	"math"
	"time"

	"slamball/internal/domain"
)

var (
	ErrNilGateway       = errors.New("gateway must not be nil")
	ErrNegativeDuration = errors.New("match durations must not be negative")
	ErrZeroGoalLimit    = errors.New("goal limit must be at least one")
	ErrAlreadyStarted   = errors.New("match already started")
	ErrMatchOver        = errors.New("match already ended")
)

// Config holds the immutable parameters of one match. Validated once,
// before the orchestrator can be constructed.
type Config struct {
	Regulation      time.Duration
	GoalLimit       uint
	GoalPause       time.Duration
	Countdown       time.Duration
	MiniCountdown   time.Duration
	DisconnectGrace time.Duration
	PostMatchDelay  time.Duration
}

// Validate rejects configurations the orchestrator must never run with.
func (c Config) Validate() error {
	durations := []time.Duration{
		c.Regulation, c.GoalPause, c.Countdown,
		c.MiniCountdown, c.DisconnectGrace, c.PostMatchDelay,
	}
	for _, d := range durations {
		if d < 0 {
			return ErrNegativeDuration
		}
	}
	if c.GoalLimit == 0 {
		return ErrZeroGoalLimit
	}
	return nil
}

// Arena holds the kickoff layout handed to the player/ball subsystem.
type Arena struct {
	BallSpawn   domain.Vec
	TeamASpawns []domain.Vec
	TeamBSpawns []domain.Vec
}

// Service is the match-lifecycle orchestrator. It owns every phase
// transition and is the only writer of the Clock, Scoreboard and Roster
// inside a domain.Match. It is driven entirely by the caller: one Tick
// per host-loop step plus the discrete Start/ReportGoal/ReportEntityLost
// entry points, all synchronous, in order, with no internal timers.
type Service struct {
	cfg   Config
	arena Arena
	gw    Gateway
}

// NewService validates the configuration and constructs the
// orchestrator. Invalid durations or a zero goal limit are fatal here,
// before any match can exist.
func NewService(cfg Config, arena Arena, gw Gateway) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if gw == nil {
		return nil, ErrNilGateway
	}
	return &Service{cfg: cfg, arena: arena, gw: gw}, nil
}

// Config returns the validated match parameters.
func (s *Service) Config() Config { return s.cfg }

// NewMatch creates the authoritative state for one match.
func (s *Service) NewMatch() *domain.Match {
	return domain.NewMatch(s.cfg.Regulation)
}

// Start runs the one-time roster classification pass and begins the
// kickoff countdown. Players are repositioned and frozen before the
// first countdown glyph shows. An empty roster is degenerate but valid.
func (s *Service) Start(m *domain.Match, entityIDs []string, classify domain.ClassifyFunc) ([]Event, error) {
	if m.Phase != domain.PhaseInitializing {
		return nil, ErrAlreadyStarted
	}
	m.Roster = domain.BuildRoster(entityIDs, classify)

	s.resetForKickoff()
	s.freeze(m)
	return s.beginCountdown(m, s.cfg.Countdown), nil
}

// Tick advances all time-based logic by delta. It is the only place a
// pending timed transition can fire, so ordering is fully determined by
// the host loop's call order.
func (s *Service) Tick(m *domain.Match, delta time.Duration) []Event {
	if delta <= 0 {
		return nil
	}
	switch m.Phase {
	case domain.PhaseInitializing, domain.PhasePostMatch:
		return nil
	}
	if m.SoftPaused {
		return s.tickSoftPause(m, delta)
	}

	var events []Event
	phaseAtEntry := m.Phase

	if m.Pending != domain.PendingNone {
		m.Wait -= delta
		// Countdown steps re-arm themselves, so a coarse delta can fire
		// several continuations in one call.
		for m.Pending != domain.PendingNone && m.Wait <= 0 {
			events = append(events, s.fireContinuation(m)...)
		}
	}

	switch phaseAtEntry {
	case domain.PhaseActive:
		if m.Phase == domain.PhaseActive {
			m.Elapsed += delta
			events = append(events, s.tickClock(m, delta)...)
		}
	case domain.PhaseSuddenDeath:
		m.Elapsed += delta
	}

	return events
}

// ReportGoal is the sole scoring entry point. Goal detection is
// external; by the time this is called the goal is a fact. Accepted in
// any phase that is not terminal, so a goal landing on the same tick as
// clock expiry counts before the buzzer is evaluated.
func (s *Service) ReportGoal(m *domain.Match, team domain.Team) ([]Event, error) {
	if m.Phase.Terminal() {
		return nil, ErrMatchOver
	}

	m.Score.RecordGoal(team)
	s.freeze(m)
	m.Clock.Pause()
	s.gw.PlayEffect(GoalScored(team))

	// A limit-reaching or sudden-death goal always produces a distinct
	// leader, so the eventual winner can never be a tie from here.
	m.LeadsToEnd = m.SuddenDeath || m.Score.ReachedGoalLimit(s.cfg.GoalLimit)
	m.Phase = domain.PhaseGoalPause
	m.Pending = domain.PendingCelebration
	m.Wait = s.cfg.GoalPause
	m.CountdownValue = 0

	return []Event{
		{Kind: EventScoreUpdated, Payload: ScoreUpdatedPayload{
			ScoringTeam: team,
			ScoreA:      m.ScoreA(),
			ScoreB:      m.ScoreB(),
		}},
		s.phaseChanged(m),
	}, nil
}

// ReportEntityLost handles a participant disconnect. The match never
// aborts over a lost player: the roster shrinks permanently, play
// freezes for the grace window, then resumes with whoever remains.
func (s *Service) ReportEntityLost(m *domain.Match, entityID string) ([]Event, error) {
	if m.Phase.Terminal() {
		return nil, ErrMatchOver
	}
	team, present := m.Roster.TeamOf(entityID)
	if !present {
		return nil, nil
	}

	m.Roster.Remove(entityID)
	s.freeze(m)
	m.Clock.Pause()
	m.SoftPaused = true
	m.GraceRemaining = s.cfg.DisconnectGrace

	return []Event{
		{Kind: EventPlayerRemoved, Payload: PlayerRemovedPayload{EntityID: entityID, Team: team}},
		{Kind: EventSoftPauseStarted, Payload: SoftPauseStartedPayload{GraceMs: s.cfg.DisconnectGrace.Milliseconds()}},
	}, nil
}

// tickSoftPause advances the disconnect grace window. The pending timed
// transition and the clock are suspended underneath it, not cancelled.
func (s *Service) tickSoftPause(m *domain.Match, delta time.Duration) []Event {
	m.GraceRemaining -= delta
	if m.GraceRemaining > 0 {
		return nil
	}
	m.SoftPaused = false
	m.GraceRemaining = 0

	switch {
	case m.Pending == domain.PendingCountdownStep || m.Pending == domain.PendingMiniCountdown:
		// The interrupted countdown may have left players partially
		// repositioned; re-issue the reset and restart the current step.
		s.resetForKickoff()
		m.Wait = countdownStepInterval
	case m.Phase == domain.PhaseActive:
		s.unfreeze(m)
		m.Clock.Resume()
	case m.Phase == domain.PhaseSuddenDeath:
		s.unfreeze(m)
	}

	return []Event{{Kind: EventPlayResumed}}
}

// tickClock runs the regulation countdown for one Active tick: warning
// cues on whole-second boundaries inside the final window, then the
// expiry branch into sudden death or straight to the final whistle.
func (s *Service) tickClock(m *domain.Match, delta time.Duration) []Event {
	m.Clock.Tick(delta)

	remaining := m.Clock.Remaining()
	if remaining > 0 {
		secs := int(math.Ceil(remaining.Seconds()))
		if secs <= ClockWarningWindowSeconds && secs != m.LastWarnSecond {
			s.gw.PlayEffect(Warning(secs))
			m.LastWarnSecond = secs
		}
		return nil
	}

	if !m.Clock.Expired() {
		return nil
	}
	if m.Score.LeadingTeam() == domain.LeaderTied {
		return s.beginSuddenDeath(m)
	}
	return s.endMatch(m, domain.WinnerOf(m.Score.LeadingTeam()))
}

// fireContinuation executes the pending timed transition whose wait has
// elapsed.
func (s *Service) fireContinuation(m *domain.Match) []Event {
	switch m.Pending {
	case domain.PendingCountdownStep, domain.PendingMiniCountdown:
		return s.stepCountdown(m)
	case domain.PendingCelebration:
		return s.endGoalPause(m)
	case domain.PendingPostMatch:
		m.Pending = domain.PendingNone
		m.Phase = domain.PhasePostMatch
		return []Event{
			{Kind: EventPostMatchReady},
			s.phaseChanged(m),
		}
	default:
		m.Pending = domain.PendingNone
		return nil
	}
}

// beginCountdown enters the countdown phase and emits the first glyph.
// A zero-length countdown commences immediately.
func (s *Service) beginCountdown(m *domain.Match, length time.Duration) []Event {
	m.Phase = domain.PhaseCountdown
	m.CountdownValue = countdownSteps(length)
	if m.CountdownValue == 0 {
		return append([]Event{s.phaseChanged(m)}, s.commence(m)...)
	}
	s.gw.PlayEffect(CountdownTick(m.CountdownValue))
	m.Pending = domain.PendingCountdownStep
	m.Wait = countdownStepInterval
	return []Event{s.phaseChanged(m)}
}

// stepCountdown advances a running countdown by one glyph, commencing
// play when it hits zero. Wait accumulates so sub-second remainders
// carry over between steps.
func (s *Service) stepCountdown(m *domain.Match) []Event {
	m.CountdownValue--
	if m.CountdownValue > 0 {
		s.gw.PlayEffect(CountdownTick(m.CountdownValue))
		m.Wait += countdownStepInterval
		return nil
	}
	return s.commence(m)
}

// commence makes the ball live: unfreeze, run the clock unless sudden
// death has already disabled it, and drop into the right play phase.
func (s *Service) commence(m *domain.Match) []Event {
	m.Pending = domain.PendingNone
	m.Wait = 0
	s.gw.PlayEffect(Commence())
	s.unfreeze(m)
	if m.SuddenDeath {
		m.Phase = domain.PhaseSuddenDeath
	} else {
		m.Phase = domain.PhaseActive
		m.Clock.Resume()
	}
	return []Event{s.phaseChanged(m)}
}

// endGoalPause resolves a finished celebration: either the match is
// decided, or positions reset and a short ready-countdown brings play
// back.
func (s *Service) endGoalPause(m *domain.Match) []Event {
	if m.LeadsToEnd {
		return s.endMatch(m, domain.WinnerOf(m.Score.LeadingTeam()))
	}
	s.resetForKickoff()
	m.CountdownValue = countdownSteps(s.cfg.MiniCountdown)
	if m.CountdownValue == 0 {
		return s.commence(m)
	}
	s.gw.PlayEffect(CountdownTick(m.CountdownValue))
	m.Pending = domain.PendingMiniCountdown
	m.Wait += countdownStepInterval
	return nil
}

// beginSuddenDeath switches regulation play into golden-goal overtime.
// The numeric clock is gone for good; play itself continues unbroken.
func (s *Service) beginSuddenDeath(m *domain.Match) []Event {
	m.SuddenDeath = true
	m.Clock.Disable()
	m.Phase = domain.PhaseSuddenDeath
	s.gw.PlayEffect(GoldenGoalStart())
	return []Event{s.phaseChanged(m)}
}

// endMatch performs the single Ended transition. Idempotent: a second
// call observes the terminal phase and changes nothing.
func (s *Service) endMatch(m *domain.Match, winner domain.Winner) []Event {
	if m.Phase.Terminal() {
		return nil
	}
	s.freeze(m)
	m.Clock.Pause()
	m.Phase = domain.PhaseEnded
	m.Winner = winner
	m.LeadsToEnd = false
	m.Pending = domain.PendingPostMatch
	m.Wait = s.cfg.PostMatchDelay
	s.gw.PlayEffect(MatchEnd(winner))

	return []Event{
		{Kind: EventMatchEnded, Payload: MatchEndedPayload{
			Winner:       winner,
			ScoreA:       m.ScoreA(),
			ScoreB:       m.ScoreB(),
			SuddenDeath:  m.SuddenDeath,
			TimePlayedMs: m.Elapsed.Milliseconds(),
		}},
		s.phaseChanged(m),
	}
}

func (s *Service) phaseChanged(m *domain.Match) Event {
	return Event{Kind: EventPhaseChanged, Payload: PhaseChangedPayload{
		Phase:       m.Phase,
		SuddenDeath: m.SuddenDeath,
	}}
}

func (s *Service) resetForKickoff() {
	s.gw.ResetForKickoff(s.arena.BallSpawn, s.arena.TeamASpawns, s.arena.TeamBSpawns)
}

func (s *Service) freeze(m *domain.Match) {
	if m.Frozen {
		return
	}
	m.Frozen = true
	s.gw.SetInputFrozen(true)
}

func (s *Service) unfreeze(m *domain.Match) {
	if !m.Frozen {
		return
	}
	m.Frozen = false
	s.gw.SetInputFrozen(false)
}

// countdownSteps converts a configured countdown length into the number
// of discrete glyphs, rounding partial seconds up.
func countdownSteps(length time.Duration) int {
	if length <= 0 {
		return 0
	}
	return int(math.Ceil(length.Seconds()))
}
