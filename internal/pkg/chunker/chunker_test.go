package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleText() string {
	var b strings.Builder
	sentences := []string{
		"The pool opens at seven in the morning.",
		"Breakfast is served on the terrace until ten.",
		"Late checkout can be arranged at the front desk.",
		"Pets are welcome in garden rooms.",
	}
	for i := 0; i < 60; i++ {
		b.WriteString(sentences[i%len(sentences)])
		if i%7 == 6 {
			b.WriteString("\n\n")
		} else {
			b.WriteString(" ")
		}
	}
	return b.String()
}

func TestChunks_Deterministic(t *testing.T) {
	s := New(300, 60)
	text := sampleText()
	assert.Equal(t, s.Chunks(text), s.Chunks(text))
	assert.Equal(t, New(300, 60).Split(text), s.Split(text))
}

func TestChunks_ExactOverlap(t *testing.T) {
	for _, tc := range []struct{ window, overlap int }{{300, 60}, {1000, 200}, {50, 0}, {17, 5}} {
		s := New(tc.window, tc.overlap)
		text := sampleText()
		runes := []rune(text)
		chunks := s.Chunks(text)
		require.NotEmpty(t, chunks)

		assert.Equal(t, 0, chunks[0].Start)
		assert.Equal(t, len(runes), chunks[len(chunks)-1].End)

		for i, c := range chunks {
			assert.Equal(t, i, c.Index)
			assert.Equal(t, string(runes[c.Start:c.End]), c.Text)
			assert.LessOrEqual(t, c.End-c.Start, tc.window)
			if i == 0 {
				continue
			}
			prev := chunks[i-1]
			assert.Equal(t, prev.End-tc.overlap, c.Start, "chunk %d start", i)
			tail := string(runes[prev.End-tc.overlap : prev.End])
			head := string(runes[c.Start : c.Start+tc.overlap])
			assert.Equal(t, tail, head)
		}
	}
}

func TestChunks_PrefersParagraphBreak(t *testing.T) {
	para := strings.Repeat("a", 70) + "\n\n"
	text := para + strings.Repeat("b c ", 40)
	chunks := New(100, 10).Chunks(text)
	require.True(t, len(chunks) >= 2)
	assert.True(t, strings.HasSuffix(chunks[0].Text, "\n\n"), "got %q", chunks[0].Text)
}

func TestChunks_HardCutWithoutWhitespace(t *testing.T) {
	text := strings.Repeat("x", 250)
	chunks := New(100, 20).Chunks(text)
	require.Len(t, chunks, 3)
	assert.Equal(t, 100, chunks[0].End)
	assert.Equal(t, 80, chunks[1].Start)
	assert.Equal(t, 180, chunks[1].End)
	assert.Equal(t, 250, chunks[2].End)
}

func TestChunks_ThreeThousandCharacters(t *testing.T) {
	page := strings.Repeat("Room service is available all night. ", 41)[:1500]
	text := page + "\n" + page
	chunks := New(DefaultWindow, DefaultOverlap).Chunks(text)
	assert.GreaterOrEqual(t, len(chunks), 3)
}

func TestChunks_EdgeInputs(t *testing.T) {
	s := New(0, 0)
	assert.Nil(t, s.Chunks(""))
	assert.Nil(t, s.Chunks(" \n\t "))

	short := s.Chunks("just one line")
	require.Len(t, short, 1)
	assert.Equal(t, "just one line", short[0].Text)
}

func TestNew_Normalizes(t *testing.T) {
	s := New(0, -5)
	assert.Equal(t, DefaultWindow, s.Window())
	assert.Equal(t, 0, s.Overlap())

	s = New(100, 100)
	assert.Equal(t, 25, s.Overlap())
}

func TestChunks_MultibyteRunes(t *testing.T) {
	text := strings.Repeat("酒店早餐 ", 100)
	chunks := New(64, 16).Chunks(text)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c.Text)), 64)
	}
}
