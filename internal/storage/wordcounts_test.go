package storage

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestWordCounts_KeepsKeyOrder(t *testing.T) {
	counts := WordCounts{{Word: "zebra", Count: 1}, {Word: "apple", Count: 1}, {Word: "mango", Count: 3}}

	data, err := json.Marshal(counts)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"zebra":1,"apple":1,"mango":3}` {
		t.Errorf("Unexpected encoding %s", data)
	}

	var decoded WordCounts
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(decoded, counts) {
		t.Errorf("Expected %v, got %v", counts, decoded)
	}
}

func TestWordCounts_Empty(t *testing.T) {
	data, err := json.Marshal(NewSnapshot())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"dailyWordCounts":{},"wordSearchCounts":{}}` {
		t.Errorf("Unexpected encoding %s", data)
	}

	var decoded Snapshot
	if err := json.Unmarshal([]byte(`{"wordSearchCounts":null}`), &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.WordSearchCounts != nil {
		t.Errorf("Expected nil counts, got %v", decoded.WordSearchCounts)
	}
}

func TestWordCounts_DuplicateKeyOverwrites(t *testing.T) {
	var decoded WordCounts
	if err := json.Unmarshal([]byte(`{"fig":1,"kiwi":2,"fig":5}`), &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	want := WordCounts{{Word: "fig", Count: 5}, {Word: "kiwi", Count: 2}}
	if !reflect.DeepEqual(decoded, want) {
		t.Errorf("Expected %v, got %v", want, decoded)
	}
	if decoded.Count("kiwi") != 2 || decoded.Count("pear") != 0 {
		t.Errorf("Unexpected Count results for %v", decoded)
	}
}

func TestWordCounts_RejectsNonObject(t *testing.T) {
	var decoded WordCounts
	if err := json.Unmarshal([]byte(`[1,2]`), &decoded); err == nil {
		t.Error("Expected error for array input")
	}
	if err := json.Unmarshal([]byte(`{"fig":"many"}`), &decoded); err == nil {
		t.Error("Expected error for non-numeric count")
	}
}
