package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// DefaultDropsPerUnit is the observed configuration; override via New.
const DefaultDropsPerUnit = 25

// Entry is one priced catalog item, immutable after load
type Entry struct {
	Name   string  // canonical display name
	Volume float64 // unit volume, > 0
	Price  float64 // unit price, >= 0
}

// Catalog is a read-only name -> (volume, price) table with case-normalized
// lookup and price-per-drop derivation.
type Catalog struct {
	entries      map[string]Entry
	dropsPerUnit float64
}

// New builds a catalog from entries. dropsPerUnit <= 0 falls back to the
// default constant.
func New(entries []Entry, dropsPerUnit float64) *Catalog {
	if dropsPerUnit <= 0 {
		dropsPerUnit = DefaultDropsPerUnit
	}
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		name := Canonicalize(e.Name)
		if name == "" || e.Volume <= 0 {
			continue
		}
		e.Name = name
		m[name] = e
	}
	return &Catalog{entries: m, dropsPerUnit: dropsPerUnit}
}

// Empty returns a catalog with no entries; every lookup misses. Used as the
// graceful fallback when the source is unreachable.
func Empty(dropsPerUnit float64) *Catalog {
	return New(nil, dropsPerUnit)
}

// Canonicalize capitalizes the first rune and lowercases the rest, so "lAVender"
// and "lavender" address the same entry.
func Canonicalize(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	runes := []rune(strings.ToLower(name))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// Lookup finds an entry by case-insensitive name
func (c *Catalog) Lookup(name string) (Entry, bool) {
	entry, ok := c.entries[Canonicalize(name)]
	return entry, ok
}

// PricePerDrop derives the cost of a single drop. Unknown items cost 0
// (defensive: the item may have vanished between selection and pricing).
func (c *Catalog) PricePerDrop(name string) float64 {
	entry, ok := c.Lookup(name)
	if !ok {
		return 0
	}
	return entry.Price / (entry.Volume * c.dropsPerUnit)
}

// Len reports the number of loaded entries
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entries returns a copy of the loaded entries in no particular order
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	return out
}

// ParseCSV reads three-column rows (name, volume, price) without a header.
// Malformed rows are skipped rather than failing the whole load.
func ParseCSV(r io.Reader) ([]Entry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var entries []Entry
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if len(record) < 3 {
			continue
		}
		volume, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			continue
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Name:   record[0],
			Volume: volume,
			Price:  price,
		})
	}
	return entries, nil
}

// LoadFromURL fetches and parses the CSV export of the price sheet
func LoadFromURL(url string, dropsPerUnit float64) (*Catalog, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch catalog: status %d", resp.StatusCode)
	}

	entries, err := ParseCSV(resp.Body)
	if err != nil {
		return nil, err
	}
	return New(entries, dropsPerUnit), nil
}

// LoadFromFile parses a local CSV file
func LoadFromFile(path string, dropsPerUnit float64) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	entries, err := ParseCSV(f)
	if err != nil {
		return nil, err
	}
	return New(entries, dropsPerUnit), nil
}
