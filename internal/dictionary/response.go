package dictionary

// apiEntry is one element of the dictionary API response array
type apiEntry struct {
	Word      string        `json:"word"`
	Phonetics []apiPhonetic `json:"phonetics"`
	Meanings  []apiMeaning  `json:"meanings"`
}

type apiPhonetic struct {
	Text  string `json:"text"`
	Audio string `json:"audio"`
}

type apiMeaning struct {
	PartOfSpeech string          `json:"partOfSpeech"`
	Definitions  []apiDefinition `json:"definitions"`
}

type apiDefinition struct {
	Definition string `json:"definition"`
	Example    string `json:"example"`
}

// Result is the part of a dictionary response kdict renders
type Result struct {
	Word     string    `json:"word"`
	Phonetic string    `json:"phonetic"`
	Meanings []Meaning `json:"meanings"`
}

// Meaning groups definitions sharing a part of speech
type Meaning struct {
	PartOfSpeech string       `json:"part_of_speech"`
	Definitions  []Definition `json:"definitions"`
}

// Definition is a single sense with an optional usage example
type Definition struct {
	Text    string `json:"text"`
	Example string `json:"example,omitempty"`
}

// mapAPIResponse keeps element 0 only. Later elements are alternative
// etymologies the renderer never shows.
func mapAPIResponse(entries []apiEntry) *Result {
	entry := entries[0]

	result := &Result{
		Word:     entry.Word,
		Meanings: make([]Meaning, 0, len(entry.Meanings)),
	}

	if len(entry.Phonetics) > 0 {
		result.Phonetic = entry.Phonetics[0].Text
	}

	for _, m := range entry.Meanings {
		meaning := Meaning{
			PartOfSpeech: m.PartOfSpeech,
			Definitions:  make([]Definition, 0, len(m.Definitions)),
		}
		for _, d := range m.Definitions {
			meaning.Definitions = append(meaning.Definitions, Definition{
				Text:    d.Definition,
				Example: d.Example,
			})
		}
		result.Meanings = append(result.Meanings, meaning)
	}

	return result
}
