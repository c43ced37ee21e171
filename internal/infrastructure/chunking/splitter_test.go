package chunking

import (
	"strings"
	"testing"
)

func TestSplitterBoundsChunkLength(t *testing.T) {
	splitter := NewSplitter(10)
	text := strings.Repeat("abcde", 5)

	chunks := splitter.Split(text)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %#v", len(chunks), chunks)
	}
	for _, chunk := range chunks {
		if len([]rune(chunk)) > 10 {
			t.Fatalf("chunk exceeds size bound: %q", chunk)
		}
	}
	if strings.Join(chunks, "") != text {
		t.Fatalf("expected lossless split, got %#v", chunks)
	}
}

func TestSplitterCutsOnRuneBoundaries(t *testing.T) {
	splitter := NewSplitter(3)
	chunks := splitter.Split("абвгде")
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %#v", len(chunks), chunks)
	}
	if chunks[0] != "абв" || chunks[1] != "где" {
		t.Fatalf("expected rune-boundary cuts, got %#v", chunks)
	}
}

func TestSplitterSkipsBlankChunks(t *testing.T) {
	splitter := NewSplitter(4)
	chunks := splitter.Split("abcd    ")
	if len(chunks) != 1 || chunks[0] != "abcd" {
		t.Fatalf("expected trailing whitespace chunk dropped, got %#v", chunks)
	}
}

func TestSplitterEmptyInput(t *testing.T) {
	splitter := NewSplitter(4)
	if chunks := splitter.Split(""); chunks != nil {
		t.Fatalf("expected nil for empty input, got %#v", chunks)
	}
}
