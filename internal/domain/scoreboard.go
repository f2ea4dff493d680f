package domain

// Scoreboard holds the per-team goal counters. Both counters only ever
// increase for the lifetime of one match.
type Scoreboard struct {
	teamAGoals uint
	teamBGoals uint
}

// RecordGoal increments the given team's counter by exactly one.
func (s *Scoreboard) RecordGoal(team Team) {
	if team == TeamA {
		s.teamAGoals++
	} else {
		s.teamBGoals++
	}
}

// LeadingTeam compares the two counters.
func (s *Scoreboard) LeadingTeam() Leader {
	switch {
	case s.teamAGoals > s.teamBGoals:
		return LeaderA
	case s.teamBGoals > s.teamAGoals:
		return LeaderB
	default:
		return LeaderTied
	}
}

// ReachedGoalLimit reports whether either team hit the "first to N" limit.
func (s *Scoreboard) ReachedGoalLimit(limit uint) bool {
	return s.teamAGoals >= limit || s.teamBGoals >= limit
}

// TeamAGoals returns team A's counter.
func (s *Scoreboard) TeamAGoals() uint { return s.teamAGoals }

// TeamBGoals returns team B's counter.
func (s *Scoreboard) TeamBGoals() uint { return s.teamBGoals }
