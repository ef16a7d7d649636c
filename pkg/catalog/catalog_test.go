package catalog

import (
	"math"
	"strings"
	"testing"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"lavender", "Lavender"},
		{"LAVENDER", "Lavender"},
		{"  lAVender  ", "Lavender"},
		{"ylang ylang", "Ylang ylang"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := Canonicalize(tt.in); got != tt.want {
			t.Errorf("Canonicalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	cat := New([]Entry{{Name: "Lavender", Volume: 30, Price: 200}}, 25)

	for _, name := range []string{"lavender", "LAVENDER", "Lavender", " lavender "} {
		entry, ok := cat.Lookup(name)
		if !ok {
			t.Errorf("Lookup(%q) missed", name)
			continue
		}
		if entry.Name != "Lavender" {
			t.Errorf("Lookup(%q).Name = %q", name, entry.Name)
		}
	}

	if _, ok := cat.Lookup("Unobtainium"); ok {
		t.Error("Lookup of absent item should miss")
	}
}

func TestPricePerDrop(t *testing.T) {
	cat := New([]Entry{{Name: "Lavender", Volume: 30, Price: 200}}, 25)

	// 200 / (30 * 25)
	want := 200.0 / 750.0
	if got := cat.PricePerDrop("lavender"); math.Abs(got-want) > 1e-9 {
		t.Errorf("PricePerDrop = %v, want %v", got, want)
	}

	if got := cat.PricePerDrop("Unobtainium"); got != 0 {
		t.Errorf("PricePerDrop of absent item = %v, want 0", got)
	}
}

func TestNewSkipsInvalidEntries(t *testing.T) {
	cat := New([]Entry{
		{Name: "Lavender", Volume: 30, Price: 200},
		{Name: "Broken", Volume: 0, Price: 100},
		{Name: "", Volume: 10, Price: 100},
	}, 25)

	if cat.Len() != 1 {
		t.Errorf("Len = %d, want 1", cat.Len())
	}
}

func TestParseCSV(t *testing.T) {
	input := strings.NewReader(
		"Lavender,30,200\n" +
			"Bergamot,10,150\n" +
			"malformed row\n" +
			"Rose,abc,90\n" +
			"Jasmine,5,xyz\n")

	entries, err := ParseCSV(input)
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Name != "Lavender" || entries[0].Volume != 30 || entries[0].Price != 200 {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[1].Name != "Bergamot" {
		t.Errorf("entries[1] = %+v", entries[1])
	}
}

func TestEmptyCatalogAlwaysMisses(t *testing.T) {
	cat := Empty(25)
	if cat.Len() != 0 {
		t.Errorf("Len = %d, want 0", cat.Len())
	}
	if _, ok := cat.Lookup("Lavender"); ok {
		t.Error("empty catalog should never hit")
	}
}
