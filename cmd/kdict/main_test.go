package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/goodtune/kdict/internal/config"
	"github.com/goodtune/kdict/internal/lookup"
	"github.com/goodtune/kdict/internal/storage"
	"github.com/goodtune/kdict/internal/usage"
)

func init() {
	color.NoColor = true
}

func TestUnknownKeys(t *testing.T) {
	got := unknownKeysIn([]string{
		"server.api_port",
		"storage.redis.host",
		"usage_tracking.top_words",
		"usage_tracking.topwords",
		"dns.upstream_servers",
	})

	want := []string{"dns.upstream_servers", "usage_tracking.topwords"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("unknownKeysIn = %v, want %v", got, want)
	}
}

func TestDumpConfig_HighlightsModifiedAndRedacts(t *testing.T) {
	cfg := config.Defaults()
	cfg.Server.APIPort = 8181
	cfg.Auth.JWTSecret = "hunter2"

	var buf bytes.Buffer
	dumpConfig(&buf, cfg, config.Defaults())
	out := buf.String()

	for _, want := range []string{
		"[server]",
		"[storage.redis]",
		"api_port = 8181  (modified from default: 8080)",
		"metrics_port = 9090\n",
		"jwt_secret = ***REDACTED***",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q", want)
		}
	}
	if strings.Contains(out, "hunter2") {
		t.Error("dump leaked the JWT secret")
	}
}

func TestRenderEntry_SkipsPlaceholders(t *testing.T) {
	var buf bytes.Buffer
	renderEntry(&buf, lookup.DefaultEntry())
	out := buf.String()

	if !strings.HasPrefix(out, "Apple") {
		t.Fatalf("expected headword first, got %q", out)
	}
	if !strings.Contains(out, "  1. A common, round fruit") {
		t.Errorf("expected first definition numbered 1, got %q", out)
	}
	if strings.Contains(out, "  2.") {
		t.Errorf("placeholder definition was rendered: %q", out)
	}
	if !strings.Contains(out, "I like apples.") {
		t.Errorf("expected examples, got %q", out)
	}
}

func TestRenderTop(t *testing.T) {
	var buf bytes.Buffer
	renderTop(&buf, []storage.WordCount{{Word: "apple", Count: 4}, {Word: "fig", Count: 1}})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "  1. apple ") || !strings.HasSuffix(lines[0], " 4") {
		t.Errorf("unexpected first line %q", lines[0])
	}
	if strings.Count(lines[0], "#") != barWidth {
		t.Errorf("top word should fill the bar: %q", lines[0])
	}

	buf.Reset()
	renderTop(&buf, nil)
	if !strings.Contains(buf.String(), "No words searched yet") {
		t.Errorf("unexpected empty output %q", buf.String())
	}
}

func TestRenderSeries(t *testing.T) {
	var buf bytes.Buffer
	renderSeries(&buf, []usage.DayCount{{Date: "2024-03-08", Count: 2}, {Date: "2024-03-10", Count: 1}})

	out := buf.String()
	if !strings.HasPrefix(out, "2024-03-08 ") || !strings.Contains(out, "\n2024-03-10 ") {
		t.Errorf("expected oldest date first, got %q", out)
	}
}

func TestBar(t *testing.T) {
	tests := []struct {
		n, max int64
		want   int
	}{
		{10, 10, barWidth},
		{5, 10, barWidth / 2},
		{1, 1000, 1},
		{0, 10, 0},
	}

	for _, tt := range tests {
		if got := strings.Count(bar(tt.n, tt.max), "#"); got != tt.want {
			t.Errorf("bar(%d, %d) has %d marks, want %d", tt.n, tt.max, got, tt.want)
		}
	}
	if bar(1, 0) != "" {
		t.Error("bar with zero max should be empty")
	}
}

const helloEntry = `[{
	"word": "hello",
	"phonetics": [{"text": "/həˈləʊ/"}],
	"meanings": [{
		"partOfSpeech": "exclamation",
		"definitions": [{"definition": "Used as a greeting.", "example": "hello there, Katie!"}]
	}]
}]`

// runCommand executes the root command against a throwaway config and
// returns what it wrote to stdout and stderr.
func runCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	dict := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/hello") {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(helloEntry))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(dict.Close)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "dictionary:\n  base_url: " + dict.URL + "\n" +
		"storage:\n  path: " + filepath.Join(dir, "kdict.bolt") + "\n" +
		"redirects:\n  open_browser: false\n" +
		"logging:\n  level: error\n"
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--config", path}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestLookupCommand_WarningsGoToCommandStderr(t *testing.T) {
	stdout, stderr, err := runCommand(t, "lookup", "   ", "hello")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}

	if !strings.Contains(stderr, `Skipping empty query "   "`) {
		t.Errorf("expected empty-query warning on stderr, got %q", stderr)
	}
	if strings.Contains(stdout, "Skipping") {
		t.Errorf("warning leaked to stdout: %q", stdout)
	}
	if !strings.HasPrefix(strings.TrimLeft(stdout, "\n"), "hello") || !strings.Contains(stdout, "1. Used as a greeting.") {
		t.Errorf("expected rendered entry on stdout, got %q", stdout)
	}
}

func TestHistoryCommand_ListsSignedOutSnapshot(t *testing.T) {
	stdout, stderr, err := runCommand(t, "history", "2024-03-08")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if stderr != "" {
		t.Errorf("expected no warnings for a signed-out history, got %q", stderr)
	}
	if !strings.Contains(stdout, "2024-03-08") {
		t.Errorf("expected the date in the output, got %q", stdout)
	}
}
