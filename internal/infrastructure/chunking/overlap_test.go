package chunking

import (
	"reflect"
	"strings"
	"testing"
)

func TestDedupeDropsExactDuplicatesKeepsOrder(t *testing.T) {
	in := []string{"alpha", "beta", " alpha ", "gamma", "beta", "   "}
	got := Dedupe(in)
	want := []string{"alpha", "beta", "gamma"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestDedupeIsIdempotent(t *testing.T) {
	in := []string{"a", "b", "a", "c"}
	once := Dedupe(in)
	twice := Dedupe(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("expected idempotence, first %v then %v", once, twice)
	}
}

func TestAddOverlapFirstChunkUnchanged(t *testing.T) {
	chunks := []string{"First sentence. Second sentence. Third sentence.", "Next chunk body"}
	got := AddOverlap(chunks, 2)
	if got[0] != chunks[0] {
		t.Fatalf("expected first chunk unchanged, got %q", got[0])
	}
}

func TestAddOverlapPrependsTrailingSentences(t *testing.T) {
	chunks := []string{"One. Two. Three.", "Next chunk body"}
	got := AddOverlap(chunks, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(got))
	}
	if !strings.Contains(got[1], "Three.") {
		t.Fatalf("expected overlap from previous chunk, got %q", got[1])
	}
	if !strings.HasSuffix(got[1], "\nNext chunk body") {
		t.Fatalf("expected original body after newline, got %q", got[1])
	}
	if strings.Contains(got[1], "One.") {
		t.Fatalf("expected only the trailing sentences, got %q", got[1])
	}
}

func TestAddOverlapShortPreviousChunkUsedWhole(t *testing.T) {
	chunks := []string{"No sentence markers here", "Second"}
	got := AddOverlap(chunks, 2)
	if got[1] != "No sentence markers here\nSecond" {
		t.Fatalf("expected whole previous chunk as prefix, got %q", got[1])
	}
}

func TestAddOverlapZeroSentencesPassesThrough(t *testing.T) {
	chunks := []string{"a", "b", "c"}
	got := AddOverlap(chunks, 0)
	if !reflect.DeepEqual(got, chunks) {
		t.Fatalf("expected pass-through, got %v", got)
	}
}

func TestAddOverlapPrefixComesFromPreOverlapNeighbor(t *testing.T) {
	chunks := []string{"A. B. C.", "D. E. F.", "G"}
	got := AddOverlap(chunks, 1)
	// The third chunk's prefix is taken from the original second chunk, not
	// from its overlapped form, so nothing from the first chunk leaks in.
	if strings.Contains(got[2], "C.") {
		t.Fatalf("overlap cascaded across chunks: %q", got[2])
	}
}
