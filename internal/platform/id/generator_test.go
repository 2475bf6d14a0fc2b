package id

import (
	"sync"
	"testing"
)

func TestUUIDGeneratorProducesUniqueIDs(t *testing.T) {
	gen := NewUUIDGenerator()
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		value, err := gen.NewID()
		if err != nil {
			t.Fatalf("new id: %v", err)
		}
		if !Valid(value) {
			t.Fatalf("expected uuid, got %q", value)
		}
		if _, ok := seen[value]; ok {
			t.Fatalf("duplicate id %q", value)
		}
		seen[value] = struct{}{}
	}
}

func TestSequenceGenerator(t *testing.T) {
	gen := NewSequenceGenerator("evt")
	first, _ := gen.NewID()
	second, _ := gen.NewID()
	if first != "evt-1" || second != "evt-2" {
		t.Fatalf("unexpected sequence: %s %s", first, second)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = gen.NewID()
		}()
	}
	wg.Wait()

	last, _ := gen.NewID()
	if last != "evt-53" {
		t.Fatalf("expected evt-53 after concurrent calls, got %s", last)
	}

	if Valid("evt-1") {
		t.Fatalf("sequence ids are not uuids")
	}
}
