// Package chunker cuts extracted document text into overlapping windows
// sized for embedding.
package chunker

import "strings"

const (
	DefaultWindow  = 1000
	DefaultOverlap = 200
)

// separators in order of preference
var separators = [][]rune{
	[]rune("\n\n"),
	[]rune("\n"),
	[]rune(". "),
	[]rune(" "),
}

// Chunk is one window of the source text. Start and End are rune offsets.
type Chunk struct {
	Index int
	Text  string
	Start int
	End   int
}

type Splitter struct {
	window  int
	overlap int
}

// New returns a splitter measuring window and overlap in characters. A
// non-positive window falls back to the default; an overlap that does not
// fit inside the window is reduced to a quarter of it.
func New(window, overlap int) *Splitter {
	if window <= 0 {
		window = DefaultWindow
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= window {
		overlap = window / 4
	}
	return &Splitter{window: window, overlap: overlap}
}

func (s *Splitter) Window() int  { return s.window }
func (s *Splitter) Overlap() int { return s.overlap }

// Split returns just the chunk texts.
func (s *Splitter) Split(text string) []string {
	chunks := s.Chunks(text)
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}

// Chunks splits text so that consecutive chunks share exactly the configured
// overlap: chunk i+1 starts overlap runes before chunk i ends.
func (s *Splitter) Chunks(text string) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	n := len(runes)

	var chunks []Chunk
	start := 0
	for {
		end := start + s.window
		if end >= n {
			chunks = append(chunks, Chunk{Index: len(chunks), Text: string(runes[start:n]), Start: start, End: n})
			return chunks
		}

		lo := start + s.overlap + 1
		if half := start + s.window/2; half > lo {
			lo = half
		}
		cut := boundary(runes, start, lo, end)

		chunks = append(chunks, Chunk{Index: len(chunks), Text: string(runes[start:cut]), Start: start, End: cut})
		start = cut - s.overlap
	}
}

// boundary finds the latest cut in [lo, hi] that falls right after a
// separator, trying separators in preference order. It falls back to hi.
func boundary(runes []rune, start, lo, hi int) int {
	for _, sep := range separators {
		for p := hi; p >= lo; p-- {
			if p-len(sep) < start {
				break
			}
			if hasSuffixAt(runes, p, sep) {
				return p
			}
		}
	}
	return hi
}

func hasSuffixAt(runes []rune, p int, sep []rune) bool {
	off := p - len(sep)
	for i, r := range sep {
		if runes[off+i] != r {
			return false
		}
	}
	return true
}
