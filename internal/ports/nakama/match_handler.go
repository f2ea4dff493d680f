package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"slamball/internal/app"
	"slamball/internal/config"
	"slamball/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// tickDelta is the fixed time step handed to the orchestrator per loop.
const tickDelta = time.Second / tickRate

// Label is the queryable match listing document.
type Label struct {
	Open   int    `json:"open"`
	Game   string `json:"game"`
	Phase  string `json:"phase"`
	ScoreA uint   `json:"score_a"`
	ScoreB uint   `json:"score_b"`
}

// MatchState holds the authoritative runtime state for the slamball
// match handler. The lifecycle itself lives in Match/Svc; this layer
// owns presences, the lobby, and the broadcast wiring.
type MatchState struct {
	Presences map[string]runtime.Presence
	JoinOrder []string
	TeamPrefs map[string]domain.Team // requested team from join metadata
	Owner     string                 // host client: drives start and goal detection
	Started   bool

	Match   *domain.Match
	Svc     *app.Service
	Gateway *dispatcherGateway
}

func newMatchHandler() *matchHandler {
	return &matchHandler{}
}

type matchHandler struct{}

// MatchInit is called when the match is created. Configuration problems
// are fatal here, before start() is ever callable.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	environment, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)

	matchCfg, err := config.ParseMatch(environment)
	if err != nil {
		logger.Error("MatchInit: invalid match configuration: %v", err)
		return nil, 0, ""
	}

	arena, err := config.LoadArena(matchCfg.ArenaPath)
	if err != nil {
		logger.Warn("MatchInit: falling back to default arena: %v", err)
		arena = config.DefaultArena()
	}

	gateway := &dispatcherGateway{}
	svc, err := app.NewService(matchCfg.AppConfig(), arena, gateway)
	if err != nil {
		logger.Error("MatchInit: rejected match configuration: %v", err)
		return nil, 0, ""
	}

	state := &MatchState{
		Presences: make(map[string]runtime.Presence),
		TeamPrefs: make(map[string]domain.Team),
		Match:     svc.NewMatch(),
		Svc:       svc,
		Gateway:   gateway,
	}

	return state, tickRate, buildLabel(state)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Removal is permanent for a running match, so joins (and rejoins)
	// only exist before kickoff.
	if matchState.Started {
		return state, false, "match_in_progress"
	}
	if len(matchState.Presences) >= app.MaxPlayers {
		return state, false, "match_full"
	}

	if team, ok := teamFromMetadata(metadata); ok {
		matchState.TeamPrefs[presence.GetUserId()] = team
	}

	return state, true, ""
}

// teamFromMetadata reads an optional requested side from join metadata.
func teamFromMetadata(metadata map[string]string) (domain.Team, bool) {
	switch metadata["team"] {
	case string(domain.TeamA):
		return domain.TeamA, true
	case string(domain.TeamB):
		return domain.TeamB, true
	default:
		return "", false
	}
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}
	matchState.Gateway.bind(dispatcher, logger)

	for _, p := range presences {
		userID := p.GetUserId()
		if _, exists := matchState.Presences[userID]; exists {
			matchState.Presences[userID] = p
			continue
		}
		matchState.Presences[userID] = p
		matchState.JoinOrder = append(matchState.JoinOrder, userID)

		if matchState.Owner == "" {
			matchState.Owner = userID
			logger.Debug("MatchJoin: owner set to %s", userID)
		}
	}

	if err := dispatcher.MatchLabelUpdate(buildLabel(matchState)); err != nil {
		logger.Error("MatchJoin: label update failed: %v", err)
	}
	mh.broadcastSnapshot(matchState, dispatcher, logger)

	return matchState
}

// MatchLeave routes disconnects: before kickoff it is plain lobby
// bookkeeping, afterwards it is the orchestrator's graceful-degradation
// path.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}
	matchState.Gateway.bind(dispatcher, logger)

	for _, p := range presences {
		userID := p.GetUserId()
		delete(matchState.Presences, userID)

		if !matchState.Started {
			matchState.JoinOrder = removeID(matchState.JoinOrder, userID)
			delete(matchState.TeamPrefs, userID)
			continue
		}

		events, err := matchState.Svc.ReportEntityLost(matchState.Match, userID)
		if err != nil {
			// Late-arriving leave after the final whistle; expected.
			logger.Debug("MatchLeave: dropped for %s: %v", userID, err)
			continue
		}
		mh.broadcastEvents(matchState, dispatcher, logger, events)
	}

	if matchState.Owner != "" {
		if _, stillHere := matchState.Presences[matchState.Owner]; !stillHere {
			matchState.Owner = firstConnected(matchState.JoinOrder, matchState.Presences)
			if matchState.Owner != "" {
				logger.Debug("MatchLeave: owner reassigned to %s", matchState.Owner)
			}
		}
	}

	if lobbyAbandoned(matchState) {
		logger.Info("MatchLeave: empty lobby, terminating match")
		return nil
	}

	if err := dispatcher.MatchLabelUpdate(buildLabel(matchState)); err != nil {
		logger.Error("MatchLeave: label update failed: %v", err)
	}

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}
	matchState.Gateway.bind(dispatcher, logger)

	// Inbound events first: a goal reported this tick must be recorded
	// before the clock can expire underneath it.
	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartMatch:
			mh.handleStartMatch(matchState, dispatcher, logger, msg)
		case OpReportGoal:
			mh.handleReportGoal(matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: unknown opcode received: %d", msg.GetOpCode())
		}
	}

	if matchState.Started {
		events := matchState.Svc.Tick(matchState.Match, tickDelta)
		mh.broadcastEvents(matchState, dispatcher, logger, events)
	}

	// An abandoned match still plays out through the grace path; it is
	// reaped only once it has fully concluded.
	if matchConcluded(matchState) {
		logger.Info("MatchLoop: match concluded with no participants, terminating")
		return nil
	}

	return matchState
}

// lobbyAbandoned reports whether an unstarted match has no one left to
// start it.
func lobbyAbandoned(state *MatchState) bool {
	return !state.Started && len(state.Presences) == 0
}

// matchConcluded reports whether a deserted match has run through to
// post-match and can be reaped.
func matchConcluded(state *MatchState) bool {
	return state.Started && len(state.Presences) == 0 &&
		state.Match.CurrentPhase() == domain.PhasePostMatch
}

func (mh *matchHandler) handleStartMatch(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if senderID != state.Owner {
		logger.Warn("StartMatch: %s is not the match owner", senderID)
		return
	}
	if state.Started {
		logger.Warn("StartMatch: match already started")
		return
	}
	if len(state.JoinOrder) < app.MinPlayersToStart {
		logger.Warn("StartMatch: cannot start with %d players, need at least %d", len(state.JoinOrder), app.MinPlayersToStart)
		return
	}

	assignments := assignTeams(state.JoinOrder, state.TeamPrefs)
	events, err := state.Svc.Start(state.Match, state.JoinOrder, func(entityID string) domain.Team {
		return assignments[entityID]
	})
	if err != nil {
		logger.Error("StartMatch: failed to start: %v", err)
		return
	}
	state.Started = true
	logger.Info("StartMatch: kickoff with %d players", len(state.JoinOrder))

	mh.broadcastEvents(state, dispatcher, logger, events)
}

// GoalReport is the inbound payload from the authoritative goal
// detector (the host client's ball-in-net check).
type GoalReport struct {
	Team domain.Team `json:"team"`
}

func (mh *matchHandler) handleReportGoal(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if senderID != state.Owner {
		logger.Warn("ReportGoal: %s is not the goal authority", senderID)
		return
	}
	if !state.Started {
		logger.Warn("ReportGoal: match not started")
		return
	}

	var report GoalReport
	if err := json.Unmarshal(msg.GetData(), &report); err != nil {
		logger.Warn("ReportGoal: invalid payload from %s: %v", senderID, err)
		return
	}
	if report.Team != domain.TeamA && report.Team != domain.TeamB {
		logger.Warn("ReportGoal: unknown team %q", report.Team)
		return
	}

	events, err := state.Svc.ReportGoal(state.Match, report.Team)
	if err != nil {
		// Goals racing the final whistle are expected; drop quietly.
		logger.Debug("ReportGoal: dropped for team %s: %v", report.Team, err)
		return
	}
	mh.broadcastEvents(state, dispatcher, logger, events)
}

// broadcastEvents dispatches orchestrator events to all clients and
// keeps the listing label in sync with phase and score changes.
func (mh *matchHandler) broadcastEvents(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	labelDirty := false
	for _, ev := range events {
		opCode, ok := opCodeFor(ev.Kind)
		if !ok {
			logger.Warn("broadcastEvents: unknown event kind %q", ev.Kind)
			continue
		}
		data, err := json.Marshal(ev.Payload)
		if err != nil {
			logger.Error("broadcastEvents: marshal %q failed: %v", ev.Kind, err)
			continue
		}
		if err := dispatcher.BroadcastMessage(opCode, data, nil, nil, true); err != nil {
			logger.Error("broadcastEvents: broadcast %q failed: %v", ev.Kind, err)
		}
		if ev.Kind == app.EventPhaseChanged || ev.Kind == app.EventScoreUpdated {
			labelDirty = true
		}
	}
	if labelDirty {
		if err := dispatcher.MatchLabelUpdate(buildLabel(state)); err != nil {
			logger.Error("broadcastEvents: label update failed: %v", err)
		}
	}
}

func opCodeFor(kind app.EventKind) (int64, bool) {
	switch kind {
	case app.EventPhaseChanged:
		return OpPhaseChanged, true
	case app.EventScoreUpdated:
		return OpScoreUpdated, true
	case app.EventMatchEnded:
		return OpMatchEnded, true
	case app.EventPostMatchReady:
		return OpPostMatchReady, true
	case app.EventPlayerRemoved:
		return OpPlayerRemoved, true
	case app.EventSoftPauseStarted:
		return OpSoftPauseStarted, true
	case app.EventPlayResumed:
		return OpPlayResumed, true
	default:
		return 0, false
	}
}

// SnapshotPlayer is one participant entry in a state snapshot. Players
// who left mid-match keep their entry, with Connected false, so
// consumers can render the final lineup.
type SnapshotPlayer struct {
	UserID    string      `json:"user_id"`
	Username  string      `json:"username,omitempty"`
	Team      domain.Team `json:"team,omitempty"`
	IsOwner   bool        `json:"is_owner"`
	Connected bool        `json:"connected"`
}

// Snapshot is the full read-only view of a match, broadcast on join and
// served to MatchSignal callers.
type Snapshot struct {
	Phase        domain.Phase     `json:"phase"`
	ScoreA       uint             `json:"score_a"`
	ScoreB       uint             `json:"score_b"`
	RemainingMs  int64            `json:"remaining_ms"` // -1 once sudden death disables the clock
	SuddenDeath  bool             `json:"sudden_death"`
	Ended        bool             `json:"ended"`
	Winner       domain.Winner    `json:"winner,omitempty"`
	TimePlayedMs int64            `json:"time_played_ms"`
	Frozen       bool             `json:"frozen"`
	Players      []SnapshotPlayer `json:"players"`
}

func buildSnapshot(state *MatchState) Snapshot {
	m := state.Match
	snapshot := Snapshot{
		Phase:        m.CurrentPhase(),
		ScoreA:       m.ScoreA(),
		ScoreB:       m.ScoreB(),
		RemainingMs:  remainingMs(m),
		SuddenDeath:  m.IsSuddenDeath(),
		Ended:        m.IsEnded(),
		Winner:       m.Winner,
		TimePlayedMs: m.TimePlayed().Milliseconds(),
		Frozen:       m.Frozen,
	}
	for _, userID := range state.JoinOrder {
		player := SnapshotPlayer{UserID: userID, IsOwner: userID == state.Owner}
		if p, connected := state.Presences[userID]; connected {
			player.Username = p.GetUsername()
			player.Connected = true
		}
		if team, ok := m.Roster.TeamOf(userID); ok {
			player.Team = team
		} else if pref, ok := state.TeamPrefs[userID]; ok && !state.Started {
			player.Team = pref
		}
		snapshot.Players = append(snapshot.Players, player)
	}
	return snapshot
}

func remainingMs(m *domain.Match) int64 {
	remaining := m.RemainingTime()
	if remaining == domain.ClockDisabled {
		return -1
	}
	return remaining.Milliseconds()
}

func (mh *matchHandler) broadcastSnapshot(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	data, err := json.Marshal(buildSnapshot(state))
	if err != nil {
		logger.Error("broadcastSnapshot: marshal failed: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpMatchSnapshot, data, nil, nil, true); err != nil {
		logger.Error("broadcastSnapshot: broadcast failed: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: match terminated for reason %d", reason)
	return state
}

// MatchSignal serves read-only state queries from outside the match.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, ""
	}
	payload, err := json.Marshal(buildSnapshot(matchState))
	if err != nil {
		logger.Error("MatchSignal: marshal failed: %v", err)
		return matchState, ""
	}
	return matchState, string(payload)
}

func buildLabel(state *MatchState) string {
	open := 0
	if !state.Started {
		open = app.MaxPlayers - len(state.Presences)
	}
	label := Label{
		Open:   open,
		Game:   "slamball",
		Phase:  string(state.Match.CurrentPhase()),
		ScoreA: state.Match.ScoreA(),
		ScoreB: state.Match.ScoreB(),
	}
	data, _ := json.Marshal(label)
	return string(data)
}

// assignTeams runs the pre-kickoff classification pass: requested teams
// are honored while they fit, everyone else fills the smaller side.
func assignTeams(order []string, prefs map[string]domain.Team) map[string]domain.Team {
	capacity := app.MaxPlayers / 2
	counts := map[domain.Team]int{}
	assignments := make(map[string]domain.Team, len(order))

	assign := func(id string, team domain.Team) {
		assignments[id] = team
		counts[team]++
	}

	for _, id := range order {
		if pref, ok := prefs[id]; ok && counts[pref] < capacity {
			assign(id, pref)
			continue
		}
		if counts[domain.TeamB] < counts[domain.TeamA] {
			assign(id, domain.TeamB)
		} else {
			assign(id, domain.TeamA)
		}
	}
	return assignments
}

func removeID(ids []string, id string) []string {
	for i, candidate := range ids {
		if candidate == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func firstConnected(order []string, presences map[string]runtime.Presence) string {
	for _, id := range order {
		if _, ok := presences[id]; ok {
			return id
		}
	}
	return ""
}
