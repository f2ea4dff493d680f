package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a
	// joinable slamball match.
	RpcQuickMatch = "quick_match"

	// MatchNameSlamball is the authoritative match handler name
	// registered with Nakama.
	MatchNameSlamball = "slamball_match"
)

// tickRate is the MatchLoop frequency registered with Nakama. The
// orchestrator receives one fixed delta per loop call.
const tickRate = 10

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartMatch int64 = 1
	OpReportGoal int64 = 2

	// Server -> Client events
	OpMatchSnapshot    int64 = 101
	OpPhaseChanged     int64 = 102
	OpScoreUpdated     int64 = 103
	OpMatchEnded       int64 = 104
	OpPostMatchReady   int64 = 105
	OpPlayerRemoved    int64 = 106
	OpSoftPauseStarted int64 = 107
	OpPlayResumed      int64 = 108

	// Server -> Client gateway commands (player/ball + presentation)
	OpKickoffReset int64 = 201
	OpInputFrozen  int64 = 202
	OpEffect       int64 = 203
)
