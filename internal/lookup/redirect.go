package lookup

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/goodtune/kdict/internal/config"
	"github.com/pkg/browser"
)

// Redirects builds links to the external tools a query can be handed off
// to. None of them return anything kdict consumes.
type Redirects struct {
	cfg config.RedirectConfig
}

// RedirectSet is every handoff link for one word
type RedirectSet struct {
	Audio string `json:"audio"`
	Image string `json:"image"`
	Video string `json:"video"`
}

// NewRedirects creates a URL builder from configuration
func NewRedirects(cfg config.RedirectConfig) *Redirects {
	return &Redirects{cfg: cfg}
}

// TranslateURL links the raw term to the translation tool
func (r *Redirects) TranslateURL(term string) string {
	q := url.Values{}
	q.Set("sl", r.cfg.SourceLanguage)
	q.Set("tl", r.cfg.TargetLanguage)
	q.Set("text", term)
	q.Set("op", "translate")
	return r.cfg.TranslateURL + "?" + q.Encode()
}

// AudioURL links the pronunciation audio. accent is "us" or "uk"; an empty
// accent uses the configured default.
func (r *Redirects) AudioURL(word, accent string) string {
	if accent == "" {
		accent = r.cfg.Accent
	}

	// the audio service numbers accents: 1 is British, 2 is American
	voice := "2"
	if accent == "uk" {
		voice = "1"
	}

	q := url.Values{}
	q.Set("audio", word)
	q.Set("type", voice)
	return r.cfg.PronunciationURL + "?" + q.Encode()
}

// ImageURL links an image search for word
func (r *Redirects) ImageURL(word string) string {
	q := url.Values{}
	q.Set("tbm", "isch")
	q.Set("q", word)
	return r.cfg.ImageSearchURL + "?" + q.Encode()
}

// VideoURL links spoken examples of word
func (r *Redirects) VideoURL(word string) string {
	return fmt.Sprintf("%s/%s/english/us", strings.TrimRight(r.cfg.VideoURL, "/"), url.PathEscape(word))
}

// All builds every word-level link at once
func (r *Redirects) All(word, accent string) RedirectSet {
	return RedirectSet{
		Audio: r.AudioURL(word, accent),
		Image: r.ImageURL(word),
		Video: r.VideoURL(word),
	}
}

// Opener hands a URL to whatever displays it
type Opener interface {
	Open(url string) error
}

// BrowserOpener opens URLs in the system browser
type BrowserOpener struct{}

// Open implements Opener
func (BrowserOpener) Open(u string) error {
	return browser.OpenURL(u)
}

// NopOpener discards URLs. Used when the caller reports links instead.
type NopOpener struct{}

// Open implements Opener
func (NopOpener) Open(string) error {
	return nil
}
