package lookup

import "github.com/goodtune/kdict/internal/dictionary"

// MaxExamples caps the examples slice, placeholder included
const MaxExamples = 8

// WordEntry is a lookup result shaped for rendering. Definitions and
// Examples always start with an empty placeholder, so neither is ever empty.
// Treat a WordEntry as immutable; a new lookup replaces it wholesale.
type WordEntry struct {
	Word        string   `json:"word"`
	Phonetic    string   `json:"phonetic"`
	Definitions []string `json:"definitions"`
	Examples    []string `json:"examples"`
}

// BuildEntry flattens a dictionary result into a WordEntry. The headword is
// the term as typed, whatever casing the provider returns.
func BuildEntry(term string, result *dictionary.Result) WordEntry {
	entry := WordEntry{
		Word:        term,
		Definitions: []string{""},
		Examples:    []string{""},
	}

	if result == nil {
		return entry
	}

	entry.Phonetic = result.Phonetic

	for _, meaning := range result.Meanings {
		for _, def := range meaning.Definitions {
			entry.Definitions = append(entry.Definitions, def.Text)

			if def.Example != "" && len(entry.Examples) < MaxExamples {
				entry.Examples = append(entry.Examples, def.Example)
			}
		}
	}

	return entry
}

// DefaultEntry is shown before the first lookup of a session
func DefaultEntry() WordEntry {
	return WordEntry{
		Word:     "Apple",
		Phonetic: "/ˈæpəl/",
		Definitions: []string{
			"",
			"A common, round fruit produced by the tree Malus domestica, cultivated in temperate climates.",
		},
		Examples: []string{
			"",
			"I like apples.",
			"Apples are good for health.",
		},
	}
}

// Clone returns a deep copy so callers cannot mutate a shared entry
func (e WordEntry) Clone() WordEntry {
	return WordEntry{
		Word:        e.Word,
		Phonetic:    e.Phonetic,
		Definitions: append([]string(nil), e.Definitions...),
		Examples:    append([]string(nil), e.Examples...),
	}
}
