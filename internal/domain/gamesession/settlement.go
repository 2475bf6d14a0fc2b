package gamesession

import (
	"fmt"

	"github.com/riskibarqy/matchbet/internal/domain/bet"
	"github.com/shopspring/decimal"
)

type SettlementInput struct {
	Type         bet.EventType
	CustomName   string
	OwnerID      string
	Participants []string
	Book         bet.Book
	Policy       CustomPolicy
}

type Settlement struct {
	Matched   bool
	Bet       bet.Bet
	Transfers []Transfer
}

// Settle computes the balance movements for one event. It has no side effects.
//
// Standard events are zero-sum: the owner receives the bet amount and the other participants
// pay it in equal shares, rounded to the cent with leftover cents taken in participant order.
// Custom events follow the policy.
func Settle(in SettlementInput) (Settlement, error) {
	var (
		b       bet.Bet
		ok      bool
		zeroSum bool
	)

	switch in.Type {
	case bet.EventGoal,
		bet.EventAssist,
		bet.EventYellowCard,
		bet.EventRedCard,
		bet.EventOwnGoal,
		bet.EventPenaltyScored,
		bet.EventPenaltyMissed,
		bet.EventCleanSheet:
		b, ok = in.Book.Lookup(in.Type)
		zeroSum = true
	case bet.EventCustom:
		b, ok = in.Book.LookupCustom(in.CustomName)
		zeroSum = in.Policy == CustomPolicyTransfer
	default:
		return Settlement{}, fmt.Errorf("%w: %q", bet.ErrUnknownEventType, in.Type)
	}

	if !ok {
		return Settlement{}, nil
	}
	out := Settlement{Matched: true, Bet: b}
	if in.OwnerID == "" {
		return out, nil
	}

	out.Transfers = []Transfer{{ParticipantID: in.OwnerID, Delta: b.Amount}}
	if zeroSum {
		out.Transfers = append(out.Transfers, splitAmong(b.Amount, in.OwnerID, in.Participants)...)
	}
	return out, nil
}

// splitAmong charges amount to every participant except owner. Shares are whole cents and sum
// to exactly amount.
func splitAmong(amount decimal.Decimal, owner string, participants []string) []Transfer {
	payers := make([]string, 0, len(participants))
	for _, id := range participants {
		if id != owner {
			payers = append(payers, id)
		}
	}
	if len(payers) == 0 {
		return nil
	}

	cents := amount.Shift(2).IntPart()
	n := int64(len(payers))
	base, rem := cents/n, cents%n
	step := int64(1)
	if rem < 0 {
		step, rem = -1, -rem
	}

	out := make([]Transfer, 0, len(payers))
	for i, id := range payers {
		share := base
		if int64(i) < rem {
			share += step
		}
		if share == 0 {
			continue
		}
		out = append(out, Transfer{ParticipantID: id, Delta: decimal.New(-share, -2)})
	}
	return out
}

func sumTransfers(transfers []Transfer) decimal.Decimal {
	total := decimal.Zero
	for _, tr := range transfers {
		total = total.Add(tr.Delta)
	}
	return total
}
