package dictionary

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/goodtune/kdict/internal/config"
	"github.com/rs/zerolog"
)

func newTestProvider(url string) *Provider {
	p := NewProvider(config.DictionaryConfig{BaseURL: url, Timeout: "2s"}, zerolog.Nop())
	p.retryDelay = 0
	return p
}

func TestProvider_FetchEntry_Success(t *testing.T) {
	body := `[{
		"word": "hello",
		"phonetics": [
			{"text": "/həˈloʊ/", "audio": "https://example.com/hello-us.mp3"},
			{"text": "/hɛˈləʊ/", "audio": ""}
		],
		"meanings": [
			{
				"partOfSpeech": "noun",
				"definitions": [
					{"definition": "A greeting.", "example": "She gave a cheerful hello."}
				]
			},
			{
				"partOfSpeech": "interjection",
				"definitions": [
					{"definition": "Used as a greeting."},
					{"definition": "Used to attract attention.", "example": "Hello? Is anyone there?"}
				]
			}
		]
	}, {
		"word": "hello",
		"phonetics": [],
		"meanings": [{"partOfSpeech": "verb", "definitions": [{"definition": "ignored"}]}]
	}]`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/hello" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	result, err := newTestProvider(srv.URL).FetchEntry(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Word != "hello" {
		t.Errorf("Word = %q, want %q", result.Word, "hello")
	}
	if result.Phonetic != "/həˈloʊ/" {
		t.Errorf("Phonetic = %q", result.Phonetic)
	}
	if len(result.Meanings) != 2 {
		t.Fatalf("len(Meanings) = %d, want 2", len(result.Meanings))
	}
	if result.Meanings[1].PartOfSpeech != "interjection" {
		t.Errorf("Meanings[1].PartOfSpeech = %q", result.Meanings[1].PartOfSpeech)
	}
	if got := result.Meanings[1].Definitions[1].Example; got != "Hello? Is anyone there?" {
		t.Errorf("example = %q", got)
	}
}

func TestProvider_FetchEntry_NoPhonetics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"word":"xyz","meanings":[]}]`))
	}))
	defer srv.Close()

	result, err := newTestProvider(srv.URL).FetchEntry(context.Background(), "xyz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Phonetic != "" {
		t.Errorf("Phonetic = %q, want empty", result.Phonetic)
	}
}

func TestProvider_FetchEntry_NotFound(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"404", http.StatusNotFound, `{"title":"No Definitions Found"}`},
		{"empty array", http.StatusOK, `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestProvider(srv.URL).FetchEntry(context.Background(), "qwzx")
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestProvider_FetchEntry_TransportErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{"server error", http.StatusBadGateway, "", http.StatusBadGateway},
		{"rate limited", http.StatusTooManyRequests, "", http.StatusTooManyRequests},
		{"bad json", http.StatusOK, "{not json", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestProvider(srv.URL).FetchEntry(context.Background(), "word")

			var te *TransportError
			if !errors.As(err, &te) {
				t.Fatalf("expected *TransportError, got %v", err)
			}
			if te.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", te.StatusCode, tt.wantStatus)
			}
			if errors.Is(err, ErrNotFound) {
				t.Error("transport error must not match ErrNotFound")
			}
		})
	}
}

func TestProvider_FetchEntry_RetryOn5xx(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[{"word":"retry","phonetics":[],"meanings":[]}]`))
	}))
	defer srv.Close()

	result, err := newTestProvider(srv.URL).FetchEntry(context.Background(), "retry")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Word != "retry" {
		t.Errorf("Word = %q", result.Word)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestProvider_FetchEntry_NoRetryOn4xx(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, _ = newTestProvider(srv.URL).FetchEntry(context.Background(), "missing")
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestProvider_FetchEntry_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestProvider(url).FetchEntry(context.Background(), "word")

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %v", err)
	}
	if te.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0", te.StatusCode)
	}
}

func TestProvider_FetchEntry_EscapesWord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ice cream" {
			t.Errorf("unexpected path: %q", r.URL.Path)
		}
		if r.URL.RawPath != "" && r.URL.RawPath != "/ice%20cream" {
			t.Errorf("unexpected raw path: %q", r.URL.RawPath)
		}
		_, _ = w.Write([]byte(`[{"word":"ice cream"}]`))
	}))
	defer srv.Close()

	if _, err := newTestProvider(srv.URL).FetchEntry(context.Background(), "ice cream"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
