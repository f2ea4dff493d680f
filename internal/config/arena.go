package config

import (
	"fmt"

	"github.com/sauerbraten/jsonfile"

	"slamball/internal/app"
	"slamball/internal/domain"
)

// arenaFile mirrors the arena layout JSON on disk. The file format
// allows // comments.
type arenaFile struct {
	BallSpawn   domain.Vec   `json:"ball_spawn"`
	TeamASpawns []domain.Vec `json:"team_a_spawns"`
	TeamBSpawns []domain.Vec `json:"team_b_spawns"`
}

// LoadArena reads the kickoff layout from the given JSON file.
func LoadArena(path string) (app.Arena, error) {
	var f arenaFile
	if err := jsonfile.ParseFile(path, &f); err != nil {
		return app.Arena{}, fmt.Errorf("load arena layout %q: %w", path, err)
	}
	return app.Arena{
		BallSpawn:   f.BallSpawn,
		TeamASpawns: f.TeamASpawns,
		TeamBSpawns: f.TeamBSpawns,
	}, nil
}

// DefaultArena is the fallback layout when no arena file is available:
// center ball, three spawns per team mirrored across the half line.
func DefaultArena() app.Arena {
	return app.Arena{
		BallSpawn: domain.Vec{X: 0, Y: 0, Z: 1.5},
		TeamASpawns: []domain.Vec{
			{X: -12, Y: 0, Z: 0},
			{X: -8, Y: -5, Z: 0},
			{X: -8, Y: 5, Z: 0},
		},
		TeamBSpawns: []domain.Vec{
			{X: 12, Y: 0, Z: 0},
			{X: 8, Y: -5, Z: 0},
			{X: 8, Y: 5, Z: 0},
		},
	}
}
