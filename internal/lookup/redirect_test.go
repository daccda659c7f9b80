package lookup

import (
	"net/url"
	"testing"

	"github.com/goodtune/kdict/internal/config"
)

func testRedirects() *Redirects {
	return NewRedirects(config.Defaults().Redirects)
}

func TestTranslateURL(t *testing.T) {
	raw := testRedirects().TranslateURL("苹果")

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if u.Host != "translate.google.com" {
		t.Errorf("Host = %q", u.Host)
	}

	q := u.Query()
	if q.Get("text") != "苹果" || q.Get("sl") != "zh-CN" || q.Get("tl") != "en" || q.Get("op") != "translate" {
		t.Errorf("unexpected query %v", q)
	}
}

func TestAudioURL(t *testing.T) {
	r := testRedirects()

	tests := []struct {
		accent string
		want   string
	}{
		{"us", "https://dict.youdao.com/dictvoice?audio=apple&type=2"},
		{"uk", "https://dict.youdao.com/dictvoice?audio=apple&type=1"},
		{"", "https://dict.youdao.com/dictvoice?audio=apple&type=2"},
	}

	for _, tt := range tests {
		if got := r.AudioURL("apple", tt.accent); got != tt.want {
			t.Errorf("AudioURL(apple, %q) = %q, want %q", tt.accent, got, tt.want)
		}
	}
}

func TestImageAndVideoURL(t *testing.T) {
	r := testRedirects()

	if got := r.ImageURL("apple pie"); got != "https://www.google.com/search?q=apple+pie&tbm=isch" {
		t.Errorf("ImageURL = %q", got)
	}
	if got := r.VideoURL("apple"); got != "https://youglish.com/pronounce/apple/english/us" {
		t.Errorf("VideoURL = %q", got)
	}

	set := r.All("apple", "uk")
	if set.Audio != r.AudioURL("apple", "uk") || set.Video != r.VideoURL("apple") {
		t.Errorf("All = %+v", set)
	}
}

func TestNopOpener(t *testing.T) {
	var o Opener = NopOpener{}
	if err := o.Open("https://example.com"); err != nil {
		t.Errorf("NopOpener returned %v", err)
	}
}
