package trace

import "strings"

type indexEntry struct {
	count     int
	firstLine int
	firstTs   uint64
	hasTs     bool
}

// Index answers presence/occurrence queries for a fixed pattern catalog
// over the immutable line set: occurrence count, first matching line,
// first timestamp. It is built in a single forward pass and never
// partially rebuilt; traces can run to hundreds of thousands of lines.
type Index struct {
	entries map[string]*indexEntry
	lines   int
}

// NewIndex scans lines once, front to back, recording per-pattern
// statistics for every literal substring pattern in the catalog.
func NewIndex(lines []string, patterns []string) *Index {
	ix := &Index{entries: make(map[string]*indexEntry, len(patterns)), lines: len(lines)}
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if _, dup := ix.entries[p]; dup {
			continue
		}
		ix.entries[p] = &indexEntry{firstLine: -1}
	}
	for i, line := range lines {
		var ts uint64
		var hasTs bool
		var tsParsed bool
		for p, entry := range ix.entries {
			if !strings.Contains(line, p) {
				continue
			}
			entry.count++
			if entry.firstLine < 0 {
				entry.firstLine = i
				if !tsParsed {
					ts, hasTs = TimestampMicros(line)
					tsParsed = true
				}
				if hasTs {
					entry.firstTs = ts
					entry.hasTs = true
				}
			}
		}
	}
	return ix
}

// Count returns how many lines contain the pattern. Patterns outside the
// catalog the index was built from always report zero.
func (ix *Index) Count(pattern string) int {
	if entry, ok := ix.entries[pattern]; ok {
		return entry.count
	}
	return 0
}

// Has reports whether the pattern occurs at least once.
func (ix *Index) Has(pattern string) bool {
	return ix.Count(pattern) > 0
}

// FirstLine returns the zero-based index of the first line containing
// the pattern.
func (ix *Index) FirstLine(pattern string) (int, bool) {
	if entry, ok := ix.entries[pattern]; ok && entry.firstLine >= 0 {
		return entry.firstLine, true
	}
	return 0, false
}

// FirstTimestamp returns the timestamp of the first line containing the
// pattern, when that line carried one.
func (ix *Index) FirstTimestamp(pattern string) (uint64, bool) {
	if entry, ok := ix.entries[pattern]; ok && entry.hasTs {
		return entry.firstTs, true
	}
	return 0, false
}

// LineCount returns the number of lines the index was built over.
func (ix *Index) LineCount() int {
	return ix.lines
}
