package domain

// ClassifyFunc assigns an entity to a team. The heuristic itself
// (proximity to spawn, join metadata, balancing) lives outside the
// domain; the roster only records its result.
type ClassifyFunc func(entityID string) Team

// Roster is the live set of participants, partitioned into the two
// teams. It is populated by a single classification pass at match start
// and only ever shrinks afterwards: removal is permanent and no entity
// may be added later.
type Roster struct {
	order []string
	teams map[string]Team
}

// BuildRoster runs the one-time classification pass over the given
// entities, preserving their order.
func BuildRoster(entityIDs []string, classify ClassifyFunc) *Roster {
	r := &Roster{teams: make(map[string]Team, len(entityIDs))}
	for _, id := range entityIDs {
		if _, dup := r.teams[id]; dup {
			continue
		}
		r.order = append(r.order, id)
		r.teams[id] = classify(id)
	}
	return r
}

// Remove deletes the entity from whichever team holds it. Idempotent if
// the entity is absent.
func (r *Roster) Remove(entityID string) {
	if _, ok := r.teams[entityID]; !ok {
		return
	}
	delete(r.teams, entityID)
	for i, id := range r.order {
		if id == entityID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Contains reports whether the entity is still participating.
func (r *Roster) Contains(entityID string) bool {
	_, ok := r.teams[entityID]
	return ok
}

// TeamOf returns the entity's team assignment.
func (r *Roster) TeamOf(entityID string) (Team, bool) {
	team, ok := r.teams[entityID]
	return team, ok
}

// Teams returns the remaining members of each team in join order.
func (r *Roster) Teams() (teamA, teamB []string) {
	for _, id := range r.order {
		if r.teams[id] == TeamA {
			teamA = append(teamA, id)
		} else {
			teamB = append(teamB, id)
		}
	}
	return teamA, teamB
}

// All returns every remaining participant in join order.
func (r *Roster) All() []string {
	return append([]string(nil), r.order...)
}

// Size returns the number of remaining participants.
func (r *Roster) Size() int { return len(r.order) }
