// Command simulate drives a full slamball match lifecycle in-process,
// without a Nakama server. It is a development aid: the orchestrator
// runs against a logging gateway and a scripted goal detector, so phase
// transitions can be eyeballed end to end.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"slamball/internal/app"
	"slamball/internal/config"
	"slamball/internal/domain"
)

// logGateway prints every outbound command instead of broadcasting it.
type logGateway struct{}

func (logGateway) ResetForKickoff(ball domain.Vec, teamA, teamB []domain.Vec) {
	log.Printf("gateway: reset for kickoff (ball %+v, %d vs %d spawns)", ball, len(teamA), len(teamB))
}

func (logGateway) SetInputFrozen(frozen bool) {
	log.Printf("gateway: input frozen = %t", frozen)
}

func (logGateway) PlayEffect(effect app.Effect) {
	log.Printf("gateway: effect %s value=%d team=%q winner=%q", effect.Kind, effect.Value, effect.Team, effect.Winner)
}

// action is a scripted inbound event at a point in simulated time.
type action struct {
	at   time.Duration
	team domain.Team
	drop string // entity to disconnect instead of scoring
}

func main() {
	players := flag.Int("players", 4, "number of simulated participants")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	matchCfg, err := config.ParseMatchFromOS()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	arena, err := config.LoadArena(matchCfg.ArenaPath)
	if err != nil {
		log.Printf("using default arena: %v", err)
		arena = config.DefaultArena()
	}

	svc, err := app.NewService(matchCfg.AppConfig(), arena, logGateway{})
	if err != nil {
		log.Fatalf("orchestrator rejected configuration: %v", err)
	}

	ids := make([]string, *players)
	for i := range ids {
		ids[i] = uuid.New().String()
	}
	classify := func(entityID string) domain.Team {
		for i, id := range ids {
			if id == entityID && i%2 == 1 {
				return domain.TeamB
			}
		}
		return domain.TeamA
	}

	match := svc.NewMatch()
	events, err := svc.Start(match, ids, classify)
	if err != nil {
		log.Fatalf("start: %v", err)
	}
	printEvents(events)

	regulation := svc.Config().Regulation
	script := []action{
		{at: regulation / 4, team: domain.TeamA},
		{at: regulation / 2, team: domain.TeamB},
		{at: regulation * 3 / 5, drop: ids[len(ids)-1]},
		// Leave the score tied so regulation expiry exercises sudden
		// death. Goal pauses and the grace window stretch wall time past
		// the regulation length, so the golden goal lands well after it.
		{at: regulation + 60*time.Second, team: domain.TeamA},
	}

	const delta = 100 * time.Millisecond
	elapsed := time.Duration(0)
	next := 0

	for match.CurrentPhase() != domain.PhasePostMatch {
		elapsed += delta

		for next < len(script) && script[next].at <= elapsed {
			act := script[next]
			next++
			if act.drop != "" {
				log.Printf("script: dropping participant %s", act.drop)
				evs, err := svc.ReportEntityLost(match, act.drop)
				if err != nil {
					log.Printf("script: drop ignored: %v", err)
				}
				printEvents(evs)
				continue
			}
			log.Printf("script: goal for team %s", act.team)
			evs, err := svc.ReportGoal(match, act.team)
			if err != nil {
				log.Printf("script: goal ignored: %v", err)
			}
			printEvents(evs)
		}

		printEvents(svc.Tick(match, delta))
	}

	log.Printf("final: winner=%s score=%d-%d sudden_death=%t time_played=%s",
		match.Winner, match.ScoreA(), match.ScoreB(), match.IsSuddenDeath(), match.TimePlayed())
}

func printEvents(events []app.Event) {
	for _, ev := range events {
		log.Printf("event: %s %+v", ev.Kind, ev.Payload)
	}
}
