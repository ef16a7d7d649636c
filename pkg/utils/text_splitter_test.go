package utils

import (
	"strings"
	"testing"
)

func TestSplitTextShortInput(t *testing.T) {
	chunks := SplitText("short", 100, 0)
	if len(chunks) != 1 || chunks[0] != "short" {
		t.Errorf("chunks = %v", chunks)
	}
}

func TestSplitTextChunking(t *testing.T) {
	text := strings.Repeat("a", 250)
	chunks := SplitText(text, 100, 0)

	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}
	if len(chunks[0]) != 100 || len(chunks[1]) != 100 || len(chunks[2]) != 50 {
		t.Errorf("chunk sizes = %d/%d/%d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
	if strings.Join(chunks, "") != text {
		t.Error("zero-overlap chunks must reassemble the original text")
	}
}

func TestSplitTextOverlap(t *testing.T) {
	text := "abcdefghij"
	chunks := SplitText(text, 4, 2)

	if chunks[0] != "abcd" {
		t.Errorf("chunks[0] = %q", chunks[0])
	}
	if chunks[1] != "cdef" {
		t.Errorf("chunks[1] = %q, want overlap with previous chunk", chunks[1])
	}
}

func TestSplitTextMultibyte(t *testing.T) {
	text := strings.Repeat("日", 10)
	chunks := SplitText(text, 4, 0)

	for i, c := range chunks {
		if !strings.HasPrefix(c, "日") {
			t.Errorf("chunk %d split inside a rune: %q", i, c)
		}
	}
	if strings.Join(chunks, "") != text {
		t.Error("chunks must reassemble the original text")
	}
}

func TestSplitByHeaders(t *testing.T) {
	doc := "# Lavender\nCalming and floral.\n\n# Bergamot\nBright and citrusy.\n"

	sections := SplitByHeaders(doc)
	if len(sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(sections))
	}
	if !strings.HasPrefix(sections[0], "# Lavender") {
		t.Errorf("header not kept with its section: %q", sections[0])
	}
	if !strings.Contains(sections[1], "Bright and citrusy.") {
		t.Errorf("sections[1] = %q", sections[1])
	}
}

func TestSplitByHeadersPreamble(t *testing.T) {
	doc := "Intro text before any header.\n# First\nBody.\n"

	sections := SplitByHeaders(doc)
	if len(sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(sections))
	}
	if sections[0] != "Intro text before any header." {
		t.Errorf("preamble section = %q", sections[0])
	}
}

func TestSplitByHeadersEmptyInput(t *testing.T) {
	if sections := SplitByHeaders(""); sections != nil {
		t.Errorf("sections = %v, want none", sections)
	}
}
