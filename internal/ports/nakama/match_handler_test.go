package nakama

import (
	"encoding/json"
	"testing"
	"time"

	"slamball/internal/app"
	"slamball/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// noopLogger implements runtime.Logger for tests that only need to
// satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

// stubPresence is a minimal runtime.Presence for snapshot tests.
type stubPresence struct {
	userID   string
	username string
}

func (p stubPresence) GetUserId() string                 { return p.userID }
func (p stubPresence) GetSessionId() string              { return "" }
func (p stubPresence) GetNodeId() string                 { return "" }
func (p stubPresence) GetHidden() bool                   { return false }
func (p stubPresence) GetPersistence() bool              { return true }
func (p stubPresence) GetUsername() string               { return p.username }
func (p stubPresence) GetStatus() string                 { return "" }
func (p stubPresence) GetReason() runtime.PresenceReason { return runtime.PresenceReasonUnknown }

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	broadcastCount int
	labelUpdates   int
	lastOpCode     int64
	lastData       []byte
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.broadcastCount++
	md.lastOpCode = opCode
	md.lastData = append([]byte(nil), data...)
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labelUpdates++
	return nil
}

func TestAssignTeams(t *testing.T) {
	tests := []struct {
		name  string
		order []string
		prefs map[string]domain.Team
		want  map[string]domain.Team
	}{
		{
			name:  "AlternatesWithoutPrefs",
			order: []string{"p1", "p2", "p3", "p4"},
			want: map[string]domain.Team{
				"p1": domain.TeamA, "p2": domain.TeamB,
				"p3": domain.TeamA, "p4": domain.TeamB,
			},
		},
		{
			name:  "HonorsPreferences",
			order: []string{"p1", "p2"},
			prefs: map[string]domain.Team{"p1": domain.TeamB, "p2": domain.TeamB},
			want:  map[string]domain.Team{"p1": domain.TeamB, "p2": domain.TeamB},
		},
		{
			name:  "OverflowingPreferenceSpills",
			order: []string{"p1", "p2", "p3", "p4"},
			prefs: map[string]domain.Team{
				"p1": domain.TeamA, "p2": domain.TeamA,
				"p3": domain.TeamA, "p4": domain.TeamA,
			},
			want: map[string]domain.Team{
				"p1": domain.TeamA, "p2": domain.TeamA,
				"p3": domain.TeamA, "p4": domain.TeamB,
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := assignTeams(test.order, test.prefs)
			if len(got) != len(test.want) {
				t.Fatalf("assignments = %v, want %v", got, test.want)
			}
			for id, team := range test.want {
				if got[id] != team {
					t.Fatalf("assignTeams()[%s] = %q, want %q", id, got[id], team)
				}
			}
		})
	}
}

func TestTeamFromMetadata(t *testing.T) {
	if team, ok := teamFromMetadata(map[string]string{"team": "b"}); !ok || team != domain.TeamB {
		t.Fatalf("teamFromMetadata(b) = %q, %t", team, ok)
	}
	if _, ok := teamFromMetadata(map[string]string{"team": "red"}); ok {
		t.Fatal("unknown team accepted")
	}
	if _, ok := teamFromMetadata(nil); ok {
		t.Fatal("nil metadata produced a team")
	}
}

func TestRemoveID(t *testing.T) {
	got := removeID([]string{"a", "b", "c"}, "b")
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Fatalf("removeID = %v", got)
	}
	if got := removeID([]string{"a"}, "x"); len(got) != 1 {
		t.Fatalf("removeID missing = %v", got)
	}
}

func newTestState(t *testing.T) *MatchState {
	t.Helper()
	gateway := &dispatcherGateway{}
	svc, err := app.NewService(app.Config{
		Regulation:      90 * time.Second,
		GoalLimit:       3,
		GoalPause:       2 * time.Second,
		Countdown:       3 * time.Second,
		MiniCountdown:   time.Second,
		DisconnectGrace: 2 * time.Second,
		PostMatchDelay:  2 * time.Second,
	}, app.Arena{}, gateway)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return &MatchState{
		Presences: make(map[string]runtime.Presence),
		TeamPrefs: make(map[string]domain.Team),
		Match:     svc.NewMatch(),
		Svc:       svc,
		Gateway:   gateway,
	}
}

func TestBuildLabel(t *testing.T) {
	state := newTestState(t)
	state.JoinOrder = []string{"u1", "u2"}

	var label Label
	if err := json.Unmarshal([]byte(buildLabel(state)), &label); err != nil {
		t.Fatalf("label unmarshal failed: %v", err)
	}
	if label.Game != "slamball" || label.Phase != string(domain.PhaseInitializing) {
		t.Fatalf("label unexpected: %+v", label)
	}
	if label.Open != app.MaxPlayers {
		t.Fatalf("open = %d, want %d with no connected presences", label.Open, app.MaxPlayers)
	}

	// A started match stops advertising seats.
	state.Started = true
	if err := json.Unmarshal([]byte(buildLabel(state)), &label); err != nil {
		t.Fatalf("label unmarshal failed: %v", err)
	}
	if label.Open != 0 {
		t.Fatalf("open = %d for started match, want 0", label.Open)
	}
}

func TestBuildSnapshotReflectsMatchState(t *testing.T) {
	state := newTestState(t)
	state.JoinOrder = []string{"u1", "u2"}
	state.Owner = "u1"

	if _, err := state.Svc.Start(state.Match, state.JoinOrder, func(id string) domain.Team {
		if id == "u1" {
			return domain.TeamA
		}
		return domain.TeamB
	}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	state.Started = true

	snapshot := buildSnapshot(state)
	if snapshot.Phase != domain.PhaseCountdown {
		t.Fatalf("snapshot phase = %q", snapshot.Phase)
	}
	if snapshot.RemainingMs != (90 * time.Second).Milliseconds() {
		t.Fatalf("snapshot remaining = %d", snapshot.RemainingMs)
	}
	if len(snapshot.Players) != 2 {
		t.Fatalf("snapshot players = %+v", snapshot.Players)
	}
	if snapshot.Players[0].Team != domain.TeamA || !snapshot.Players[0].IsOwner {
		t.Fatalf("owner entry = %+v", snapshot.Players[0])
	}
	if snapshot.Players[1].Team != domain.TeamB {
		t.Fatalf("second entry = %+v", snapshot.Players[1])
	}
}

func TestSnapshotRemainingSentinelInSuddenDeath(t *testing.T) {
	state := newTestState(t)
	state.Match.Clock.Disable()
	state.Match.SuddenDeath = true

	snapshot := buildSnapshot(state)
	if snapshot.RemainingMs != -1 {
		t.Fatalf("remaining = %d, want -1 sentinel", snapshot.RemainingMs)
	}
	if !snapshot.SuddenDeath {
		t.Fatal("sudden death flag missing")
	}
}

func TestSnapshotMarksDepartedPlayers(t *testing.T) {
	state := newTestState(t)
	state.JoinOrder = []string{"u1", "u2"}
	state.Owner = "u1"
	state.Presences["u1"] = stubPresence{userID: "u1", username: "alice"}
	state.Started = true

	// u2 left mid-match: no presence, already removed from the roster.
	snapshot := buildSnapshot(state)
	if len(snapshot.Players) != 2 {
		t.Fatalf("snapshot players = %+v", snapshot.Players)
	}
	if !snapshot.Players[0].Connected || snapshot.Players[0].Username != "alice" {
		t.Fatalf("connected entry = %+v", snapshot.Players[0])
	}
	if snapshot.Players[1].Connected || snapshot.Players[1].Username != "" {
		t.Fatalf("departed entry = %+v", snapshot.Players[1])
	}
}

func TestTerminationGates(t *testing.T) {
	state := newTestState(t)
	if !lobbyAbandoned(state) {
		t.Fatal("empty unstarted match should be reaped")
	}

	state.Presences["u1"] = stubPresence{userID: "u1"}
	if lobbyAbandoned(state) {
		t.Fatal("occupied lobby reaped")
	}

	// Deserted mid-play: the grace path runs the match out instead.
	delete(state.Presences, "u1")
	state.Started = true
	if lobbyAbandoned(state) {
		t.Fatal("started match reaped as a lobby")
	}
	if matchConcluded(state) {
		t.Fatalf("match in phase %q reaped before conclusion", state.Match.CurrentPhase())
	}

	state.Match.Phase = domain.PhasePostMatch
	if !matchConcluded(state) {
		t.Fatal("deserted post-match not reaped")
	}
}

func TestOpCodeForCoversAllEventKinds(t *testing.T) {
	kinds := []app.EventKind{
		app.EventPhaseChanged,
		app.EventScoreUpdated,
		app.EventMatchEnded,
		app.EventPostMatchReady,
		app.EventPlayerRemoved,
		app.EventSoftPauseStarted,
		app.EventPlayResumed,
	}
	seen := map[int64]bool{}
	for _, kind := range kinds {
		op, ok := opCodeFor(kind)
		if !ok {
			t.Fatalf("no opcode for %q", kind)
		}
		if seen[op] {
			t.Fatalf("opcode %d reused", op)
		}
		seen[op] = true
	}
	if _, ok := opCodeFor("bogus"); ok {
		t.Fatal("bogus event kind mapped")
	}
}

func TestDispatcherGatewayBroadcastsEffects(t *testing.T) {
	gateway := &dispatcherGateway{}
	dispatcher := &mockDispatcher{}
	gateway.bind(dispatcher, noopLogger{})

	gateway.PlayEffect(app.GoalScored(domain.TeamB))
	if dispatcher.lastOpCode != OpEffect {
		t.Fatalf("opcode = %d, want %d", dispatcher.lastOpCode, OpEffect)
	}
	var effect EffectPayload
	if err := json.Unmarshal(dispatcher.lastData, &effect); err != nil {
		t.Fatalf("payload unmarshal failed: %v", err)
	}
	if effect.Kind != app.EffectGoalScored || effect.Team != domain.TeamB {
		t.Fatalf("effect payload = %+v", effect)
	}

	gateway.SetInputFrozen(true)
	if dispatcher.lastOpCode != OpInputFrozen {
		t.Fatalf("opcode = %d, want %d", dispatcher.lastOpCode, OpInputFrozen)
	}

	gateway.ResetForKickoff(domain.Vec{}, nil, nil)
	if dispatcher.lastOpCode != OpKickoffReset {
		t.Fatalf("opcode = %d, want %d", dispatcher.lastOpCode, OpKickoffReset)
	}
	if dispatcher.broadcastCount != 3 {
		t.Fatalf("broadcasts = %d, want 3", dispatcher.broadcastCount)
	}
}

func TestDispatcherGatewayUnboundIsSafe(t *testing.T) {
	gateway := &dispatcherGateway{}
	// Must not panic before the first runtime callback binds a dispatcher.
	gateway.PlayEffect(app.Commence())
	gateway.SetInputFrozen(false)
}
