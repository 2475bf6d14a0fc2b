package memory

import (
	"time"

	"github.com/riskibarqy/matchbet/internal/domain/bet"
	"github.com/riskibarqy/matchbet/internal/domain/gamesession"
	"github.com/riskibarqy/matchbet/internal/domain/player"
	"github.com/riskibarqy/matchbet/internal/domain/team"
	"github.com/shopspring/decimal"
)

const DemoSessionID = "demo-north-london-derby"

func SeedTeams() []team.Team {
	return []team.Team{
		{ID: "eng-ars", Name: "Arsenal", Short: "ARS", Color: "#EF0107"},
		{ID: "eng-tot", Name: "Tottenham Hotspur", Short: "TOT", Color: "#132257"},
	}
}

func SeedPlayers() []player.Player {
	return []player.Player{
		{ID: "ars-gk-01", TeamID: "eng-ars", Name: "David Raya", Position: player.PositionGoalkeeper, ExternalID: "3315"},
		{ID: "ars-def-01", TeamID: "eng-ars", Name: "William Saliba", Position: player.PositionDefender, ExternalID: "3320"},
		{ID: "ars-def-02", TeamID: "eng-ars", Name: "Gabriel Magalhaes", Position: player.PositionDefender, ExternalID: "3321"},
		{ID: "ars-mid-01", TeamID: "eng-ars", Name: "Martin Odegaard", Position: player.PositionMidfielder, ExternalID: "3330"},
		{ID: "ars-mid-02", TeamID: "eng-ars", Name: "Declan Rice", Position: player.PositionMidfielder, ExternalID: "3331"},
		{ID: "ars-fwd-01", TeamID: "eng-ars", Name: "Bukayo Saka", Position: player.PositionForward, ExternalID: "3340"},
		{ID: "tot-gk-01", TeamID: "eng-tot", Name: "Guglielmo Vicario", Position: player.PositionGoalkeeper, ExternalID: "4415"},
		{ID: "tot-def-01", TeamID: "eng-tot", Name: "Cristian Romero", Position: player.PositionDefender, ExternalID: "4420"},
		{ID: "tot-mid-01", TeamID: "eng-tot", Name: "James Maddison", Position: player.PositionMidfielder, ExternalID: "4430"},
		{ID: "tot-mid-02", TeamID: "eng-tot", Name: "Dejan Kulusevski", Position: player.PositionMidfielder, ExternalID: "4431"},
		{ID: "tot-fwd-01", TeamID: "eng-tot", Name: "Son Heung-min", Position: player.PositionForward, ExternalID: "4440"},
		{ID: "tot-fwd-02", TeamID: "eng-tot", Name: "Dominic Solanke", Position: player.PositionForward, ExternalID: "4441"},
	}
}

func SeedBets() []bet.Bet {
	return []bet.Bet{
		{Type: bet.EventGoal, Amount: decimal.NewFromInt(5)},
		{Type: bet.EventAssist, Amount: decimal.NewFromInt(2)},
		{Type: bet.EventYellowCard, Amount: decimal.NewFromInt(-2)},
		{Type: bet.EventRedCard, Amount: decimal.NewFromInt(-10)},
		{Type: bet.EventOwnGoal, Amount: decimal.NewFromInt(-5)},
		{Type: bet.EventCustom, Name: "Hat Trick Celebration", Amount: decimal.NewFromInt(15)},
	}
}

// SeedDemoSession is a session in setup with teams, players and bets but no participants.
func SeedDemoSession(now time.Time) gamesession.Snapshot {
	return gamesession.Snapshot{
		ID:        DemoSessionID,
		Name:      "North London Derby",
		Phase:     gamesession.PhaseSetup,
		Policy:    gamesession.CustomPolicyBonus,
		Teams:     SeedTeams(),
		Players:   SeedPlayers(),
		Bets:      SeedBets(),
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}
