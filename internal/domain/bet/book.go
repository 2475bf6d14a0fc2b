package bet

import (
	"fmt"
	"strings"
)

// Book holds the stake rules of one game in insertion order.
type Book struct {
	bets []Bet
}

func NewBook(bets ...Bet) (Book, error) {
	var b Book
	for _, item := range bets {
		if err := b.Add(item); err != nil {
			return Book{}, err
		}
	}
	return b, nil
}

// Add registers a bet. Standard event types accept one bet each, custom bets are unique by name.
func (b *Book) Add(item Bet) error {
	item.Name = strings.TrimSpace(item.Name)
	if err := item.Validate(); err != nil {
		return err
	}
	key := item.Key()
	for _, existing := range b.bets {
		if existing.Key() == key {
			return fmt.Errorf("%w: %s", ErrDuplicateBet, key)
		}
	}

	b.bets = append(b.bets, item)
	return nil
}

func (b *Book) Remove(key string) error {
	for i, existing := range b.bets {
		if existing.Key() != key {
			continue
		}
		b.bets = append(b.bets[:i], b.bets[i+1:]...)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrBetNotFound, key)
}

// Lookup returns the bet for a standard event type.
func (b Book) Lookup(t EventType) (Bet, bool) {
	if t == EventCustom {
		return Bet{}, false
	}
	for _, item := range b.bets {
		if item.Type == t {
			return item, true
		}
	}
	return Bet{}, false
}

// LookupCustom matches a custom bet by exact name.
func (b Book) LookupCustom(name string) (Bet, bool) {
	for _, item := range b.bets {
		if item.Type == EventCustom && item.Name == name {
			return item, true
		}
	}
	return Bet{}, false
}

func (b Book) All() []Bet {
	return append([]Bet(nil), b.bets...)
}

func (b Book) Custom() []Bet {
	out := make([]Bet, 0, len(b.bets))
	for _, item := range b.bets {
		if item.IsCustom() {
			out = append(out, item)
		}
	}
	return out
}

func (b Book) Len() int {
	return len(b.bets)
}
