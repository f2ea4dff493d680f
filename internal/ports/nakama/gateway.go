package nakama

import (
	"encoding/json"

	"slamball/internal/app"
	"slamball/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// dispatcherGateway implements app.Gateway by broadcasting opcodes to
// every connected client. The match dispatcher only exists inside
// runtime callbacks, so the handler rebinds it at the top of each one.
type dispatcherGateway struct {
	dispatcher runtime.MatchDispatcher
	logger     runtime.Logger
}

func (g *dispatcherGateway) bind(dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	g.dispatcher = dispatcher
	g.logger = logger
}

// KickoffResetPayload repositions the ball and players client-side.
type KickoffResetPayload struct {
	BallSpawn   domain.Vec   `json:"ball_spawn"`
	TeamASpawns []domain.Vec `json:"team_a_spawns"`
	TeamBSpawns []domain.Vec `json:"team_b_spawns"`
}

// InputFrozenPayload toggles input for all live roster entities.
type InputFrozenPayload struct {
	Frozen bool `json:"frozen"`
}

// EffectPayload carries a presentation cue.
type EffectPayload struct {
	Kind   app.EffectKind `json:"kind"`
	Value  int            `json:"value,omitempty"`
	Team   domain.Team    `json:"team,omitempty"`
	Winner domain.Winner  `json:"winner,omitempty"`
}

func (g *dispatcherGateway) ResetForKickoff(ballSpawn domain.Vec, teamASpawns, teamBSpawns []domain.Vec) {
	g.send(OpKickoffReset, KickoffResetPayload{
		BallSpawn:   ballSpawn,
		TeamASpawns: teamASpawns,
		TeamBSpawns: teamBSpawns,
	})
}

func (g *dispatcherGateway) SetInputFrozen(frozen bool) {
	g.send(OpInputFrozen, InputFrozenPayload{Frozen: frozen})
}

func (g *dispatcherGateway) PlayEffect(effect app.Effect) {
	g.send(OpEffect, EffectPayload{
		Kind:   effect.Kind,
		Value:  effect.Value,
		Team:   effect.Team,
		Winner: effect.Winner,
	})
}

func (g *dispatcherGateway) send(opCode int64, payload any) {
	if g.dispatcher == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		g.logger.Error("gateway: failed to marshal payload for op %d: %v", opCode, err)
		return
	}
	if err := g.dispatcher.BroadcastMessage(opCode, data, nil, nil, true); err != nil {
		g.logger.Error("gateway: broadcast for op %d failed: %v", opCode, err)
	}
}
