package lookup

import (
	"context"
	"errors"
	"testing"

	"github.com/goodtune/kdict/internal/dictionary"
	"github.com/rs/zerolog"
)

type fakeFetcher struct {
	results map[string]*dictionary.Result
	err     error
	calls   int
}

func (f *fakeFetcher) FetchEntry(ctx context.Context, word string) (*dictionary.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if r, ok := f.results[word]; ok {
		return r, nil
	}
	return nil, dictionary.ErrNotFound
}

func TestService_Lookup(t *testing.T) {
	fetcher := &fakeFetcher{results: map[string]*dictionary.Result{
		"Apple": {Word: "apple", Meanings: []dictionary.Meaning{{Definitions: []dictionary.Definition{{Text: "A fruit."}}}}},
	}}

	svc, err := NewService(fetcher, 16, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	entry, err := svc.Lookup(context.Background(), "Apple")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if entry.Word != "Apple" {
		t.Errorf("Word = %q", entry.Word)
	}
	if len(entry.Definitions) < 1 {
		t.Error("Expected at least one definition")
	}

	// second lookup is cached
	if _, err := svc.Lookup(context.Background(), "Apple"); err != nil {
		t.Fatalf("cached Lookup failed: %v", err)
	}
	if fetcher.calls != 1 {
		t.Errorf("calls = %d, want 1", fetcher.calls)
	}
}

func TestService_Lookup_NotFound(t *testing.T) {
	svc, _ := NewService(&fakeFetcher{}, 0, zerolog.Nop())

	if _, err := svc.Lookup(context.Background(), "qwzx"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Lookup(context.Background(), ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for empty term, got %v", err)
	}
}

func TestService_Lookup_TransportErrorCollapses(t *testing.T) {
	fetcher := &fakeFetcher{err: &dictionary.TransportError{StatusCode: 502, Err: errors.New("bad gateway")}}
	svc, _ := NewService(fetcher, 16, zerolog.Nop())

	_, err := svc.Lookup(context.Background(), "apple")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	var te *dictionary.TransportError
	if errors.As(err, &te) {
		t.Error("Transport error leaked to caller")
	}

	// failures are not cached
	_, _ = svc.Lookup(context.Background(), "apple")
	if fetcher.calls != 2 {
		t.Errorf("calls = %d, want 2", fetcher.calls)
	}
}
