package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// WordCounts is a word → count object that keeps its key order through JSON.
type WordCounts []WordCount

// Count returns the count stored for word, or zero.
func (w WordCounts) Count(word string) int64 {
	for _, wc := range w {
		if wc.Word == word {
			return wc.Count
		}
	}
	return 0
}

// MarshalJSON writes the pairs as one JSON object, keys in slice order.
func (w WordCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, wc := range w {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(wc.Word)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatInt(wc.Count, 10))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, keeping keys in document order. A
// repeated key overwrites the earlier count in place.
func (w *WordCounts) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*w = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("word counts: expected object, got %v", tok)
	}

	out := WordCounts{}
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		word, ok := tok.(string)
		if !ok {
			return fmt.Errorf("word counts: expected key, got %v", tok)
		}

		var count int64
		if err := dec.Decode(&count); err != nil {
			return fmt.Errorf("word counts: %s: %w", word, err)
		}

		if i, seen := index[word]; seen {
			out[i].Count = count
			continue
		}
		index[word] = len(out)
		out = append(out, WordCount{Word: word, Count: count})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*w = out
	return nil
}
