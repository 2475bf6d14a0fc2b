package gamesession

import (
	"github.com/riskibarqy/matchbet/internal/domain/player"
	"github.com/shopspring/decimal"
)

// Ledger is the ordered record of applied events and substitutions. Entries are only appended or
// removed from the end.
type Ledger struct {
	entries []Entry
	// dedup counts live event keys among the current entries.
	dedup map[string]int
}

func (l *Ledger) Append(e Entry) {
	l.entries = append(l.entries, e)
	if key := dedupKeyOf(e); key != "" {
		if l.dedup == nil {
			l.dedup = make(map[string]int)
		}
		l.dedup[key]++
	}
}

func (l *Ledger) Last() (Entry, bool) {
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

func (l *Ledger) Pop() (Entry, bool) {
	last, ok := l.Last()
	if !ok {
		return Entry{}, false
	}
	l.entries[len(l.entries)-1] = Entry{}
	l.entries = l.entries[:len(l.entries)-1]

	if key := dedupKeyOf(last); key != "" {
		l.dedup[key]--
		if l.dedup[key] <= 0 {
			delete(l.dedup, key)
		}
	}
	return last, true
}

func (l *Ledger) Len() int {
	return len(l.entries)
}

func (l *Ledger) NextSeq() int {
	return len(l.entries) + 1
}

// Contains reports whether a live event with the given dedup key is currently recorded.
func (l *Ledger) Contains(key string) bool {
	return l.dedup[key] > 0
}

func (l *Ledger) Entries() []Entry {
	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e.clone())
	}
	return out
}

func (l *Ledger) Events() []GameEvent {
	out := make([]GameEvent, 0, len(l.entries))
	for _, e := range l.entries {
		if e.Kind == EntryEvent && e.Event != nil {
			out = append(out, *e.clone().Event)
		}
	}
	return out
}

func (l *Ledger) Substitutions() []Substitution {
	out := make([]Substitution, 0)
	for _, e := range l.entries {
		if e.Kind == EntrySubstitution && e.Substitution != nil {
			out = append(out, *e.Substitution)
		}
	}
	return out
}

// Balances replays the stored transfers.
func (l *Ledger) Balances() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, e := range l.entries {
		if e.Kind != EntryEvent || e.Event == nil {
			continue
		}
		for _, tr := range e.Event.Transfers {
			out[tr.ParticipantID] = out[tr.ParticipantID].Add(tr.Delta)
		}
	}
	return out
}

// Stats replays the player counters.
func (l *Ledger) Stats() map[string]player.Stats {
	out := make(map[string]player.Stats)
	for _, e := range l.entries {
		if e.Kind != EntryEvent || e.Event == nil {
			continue
		}
		stats := out[e.Event.PlayerID]
		stats.Apply(e.Event.Type, 1)
		out[e.Event.PlayerID] = stats
	}
	return out
}

func dedupKeyOf(e Entry) string {
	if e.Kind != EntryEvent || e.Event == nil {
		return ""
	}
	return e.Event.DedupKey
}
