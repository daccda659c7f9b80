package lookup

import (
	"sync"
	"testing"
)

func TestSequencer(t *testing.T) {
	var s Sequencer

	first := s.Next()
	if !s.IsLatest(first) {
		t.Fatal("Expected first sequence to be latest")
	}

	second := s.Next()
	if second <= first {
		t.Fatalf("Expected increasing sequence, got %d then %d", first, second)
	}
	if s.IsLatest(first) {
		t.Error("Superseded sequence reported as latest")
	}
	if !s.IsLatest(second) {
		t.Error("Expected second sequence to be latest")
	}
}

func TestSequencer_Concurrent(t *testing.T) {
	var s Sequencer
	var wg sync.WaitGroup

	seen := make(chan uint64, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- s.Next()
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[uint64]bool)
	for seq := range seen {
		if unique[seq] {
			t.Fatalf("Duplicate sequence %d", seq)
		}
		unique[seq] = true
	}
	if !s.IsLatest(100) {
		t.Error("Expected 100 to be latest")
	}
}
