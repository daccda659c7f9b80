package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/goodtune/kdict/internal/lookup"
	"github.com/goodtune/kdict/internal/storage"
	"github.com/goodtune/kdict/internal/usage"
)

var (
	headColor    = color.New(color.FgCyan, color.Bold)
	dimColor     = color.New(color.FgHiBlack)
	exampleColor = color.New(color.FgGreen, color.Italic)
	warnColor    = color.New(color.FgYellow)
	errColor     = color.New(color.FgRed, color.Bold)
)

// renderEntry prints a word entry; the leading placeholders are skipped
func renderEntry(w io.Writer, entry lookup.WordEntry) {
	_, _ = headColor.Fprint(w, entry.Word)
	if entry.Phonetic != "" {
		_, _ = dimColor.Fprintf(w, "  %s", entry.Phonetic)
	}
	fmt.Fprintln(w)

	for i, def := range entry.Definitions[1:] {
		fmt.Fprintf(w, "  %d. %s\n", i+1, def)
	}

	if len(entry.Examples) > 1 {
		fmt.Fprintln(w)
		for _, ex := range entry.Examples[1:] {
			_, _ = exampleColor.Fprintf(w, "  “%s”\n", ex)
		}
	}
}

func renderRedirects(w io.Writer, links lookup.RedirectSet) {
	_, _ = dimColor.Fprintf(w, "  audio: %s\n", links.Audio)
	_, _ = dimColor.Fprintf(w, "  image: %s\n", links.Image)
	_, _ = dimColor.Fprintf(w, "  video: %s\n", links.Video)
}

// renderTop prints a ranked list of words with a proportional bar
func renderTop(w io.Writer, words []storage.WordCount) {
	if len(words) == 0 {
		_, _ = dimColor.Fprintln(w, "No words searched yet")
		return
	}

	width := 0
	for _, wc := range words {
		if len(wc.Word) > width {
			width = len(wc.Word)
		}
	}

	top := words[0].Count
	for i, wc := range words {
		fmt.Fprintf(w, "%3d. %-*s %s %d\n", i+1, width, wc.Word, bar(wc.Count, top), wc.Count)
	}
}

// renderSeries prints one line per day that has a record
func renderSeries(w io.Writer, series []usage.DayCount) {
	if len(series) == 0 {
		_, _ = dimColor.Fprintln(w, "No searches in this period")
		return
	}

	var top int64
	for _, day := range series {
		if day.Count > top {
			top = day.Count
		}
	}

	for _, day := range series {
		fmt.Fprintf(w, "%s %s %d\n", day.Date, bar(day.Count, top), day.Count)
	}
}

func renderWords(w io.Writer, date string, words []string) {
	_, _ = headColor.Fprintln(w, date)
	if len(words) == 0 {
		_, _ = dimColor.Fprintln(w, "  No searches on this date")
		return
	}
	for _, word := range words {
		fmt.Fprintf(w, "  %s\n", word)
	}
}

const barWidth = 30

func bar(n, max int64) string {
	if max <= 0 {
		return ""
	}
	size := int(n * barWidth / max)
	if size == 0 && n > 0 {
		size = 1
	}
	return headColor.Sprint(strings.Repeat("#", size)) + strings.Repeat(" ", barWidth-size)
}
