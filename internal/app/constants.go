package app

import "time"

// MinPlayersToStart defines the minimum number of participants required
// to start a match. Keep this centralized so tests or local runs can
// adjust the rule without touching multiple call sites.
const MinPlayersToStart = 2

// MaxPlayers caps the combined roster size (3v3 plus nothing held back).
const MaxPlayers = 6

// ClockWarningWindowSeconds is the final stretch of regulation time
// during which a warning cue fires on every whole-second boundary.
const ClockWarningWindowSeconds = 10

// countdownStepInterval is the spacing between discrete countdown
// glyphs, for both the opening countdown and the post-goal one.
const countdownStepInterval = time.Second
