package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"slamball/internal/app"
)

// Match holds the tunable match parameters as they arrive from the
// environment. Nakama passes the runtime environment as a plain map, so
// parsing goes through env.Options rather than the process environment.
type Match struct {
	RegulationSeconds    int    `env:"SLAMBALL_REGULATION_SEC" envDefault:"180"`
	GoalLimit            uint   `env:"SLAMBALL_GOAL_LIMIT" envDefault:"3"`
	GoalPauseSeconds     int    `env:"SLAMBALL_GOAL_PAUSE_SEC" envDefault:"4"`
	CountdownSeconds     int    `env:"SLAMBALL_COUNTDOWN_SEC" envDefault:"5"`
	MiniCountdownSeconds int    `env:"SLAMBALL_MINI_COUNTDOWN_SEC" envDefault:"3"`
	GraceSeconds         int    `env:"SLAMBALL_DISCONNECT_GRACE_SEC" envDefault:"5"`
	PostMatchSeconds     int    `env:"SLAMBALL_POST_MATCH_SEC" envDefault:"6"`
	ArenaPath            string `env:"SLAMBALL_ARENA_PATH" envDefault:"data/arena.json"`
}

// ParseMatch loads match parameters from the given environment map,
// falling back to defaults for unset keys.
func ParseMatch(environment map[string]string) (Match, error) {
	var m Match
	if err := env.ParseWithOptions(&m, env.Options{Environment: environment}); err != nil {
		return Match{}, fmt.Errorf("parse match env: %w", err)
	}
	return m, nil
}

// ParseMatchFromOS loads match parameters from the process environment.
func ParseMatchFromOS() (Match, error) {
	var m Match
	if err := env.Parse(&m); err != nil {
		return Match{}, fmt.Errorf("parse match env: %w", err)
	}
	return m, nil
}

// AppConfig converts the raw parameters into the orchestrator's
// validated configuration shape. Validation itself happens in
// app.NewService so construction is the single gate.
func (m Match) AppConfig() app.Config {
	return app.Config{
		Regulation:      time.Duration(m.RegulationSeconds) * time.Second,
		GoalLimit:       m.GoalLimit,
		GoalPause:       time.Duration(m.GoalPauseSeconds) * time.Second,
		Countdown:       time.Duration(m.CountdownSeconds) * time.Second,
		MiniCountdown:   time.Duration(m.MiniCountdownSeconds) * time.Second,
		DisconnectGrace: time.Duration(m.GraceSeconds) * time.Second,
		PostMatchDelay:  time.Duration(m.PostMatchSeconds) * time.Second,
	}
}
