package chunk

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/clientpulse/kb/core"
)

const (
	// DefaultTargetChars is the default character budget per chunk.
	DefaultTargetChars = 500
	// DefaultOverlapChars is the default trailing overlap seeded into the next chunk.
	DefaultOverlapChars = 50
)

// Chunker groups ordered segments into bounded text windows.
// It is stateless and safe for concurrent use.
type Chunker struct {
	targetChars  int
	overlapChars int
}

// New creates a Chunker with the given character budgets.
// Requires targetChars > 0 and 0 <= overlapChars < targetChars.
func New(targetChars, overlapChars int) (*Chunker, error) {
	if targetChars <= 0 {
		return nil, fmt.Errorf("%w: target chars %d", ErrInvalidBudget, targetChars)
	}
	if overlapChars < 0 || overlapChars >= targetChars {
		return nil, fmt.Errorf("%w: overlap chars %d with target %d", ErrInvalidBudget, overlapChars, targetChars)
	}
	return &Chunker{
		targetChars:  targetChars,
		overlapChars: overlapChars,
	}, nil
}

// Default returns a Chunker with the default budgets.
func Default() *Chunker {
	c, _ := New(DefaultTargetChars, DefaultOverlapChars)
	return c
}

// Split groups segments into chunks for the given document.
//
// A chunk is closed when adding the next segment would push the accumulated
// length over the target budget, provided the buffer already holds at least
// one segment: a single oversized segment becomes a chunk by itself, it is
// never split. Blank segments are skipped and never start or end a chunk.
// With a positive overlap budget, each new chunk is seeded with the trailing
// overlap characters of the previous chunk's last contributing segment,
// keeping that segment's speaker and offsets.
//
// Chunk IDs are content-derived, so splitting identical input twice yields
// identical chunks.
func (c *Chunker) Split(documentID core.ID, segments []core.Segment) []*core.Chunk {
	var chunks []*core.Chunk
	var buffer []core.Segment
	bufferLen := 0
	seq := 0

	for _, seg := range segments {
		if seg.Blank() {
			continue
		}
		segLen := len(seg.Text)
		if bufferLen+segLen > c.targetChars && len(buffer) > 0 {
			chunks = append(chunks, c.flush(buffer, documentID, seq))
			seq++

			if c.overlapChars > 0 {
				tail := buffer[len(buffer)-1]
				overlapText := tail.Text
				if len(overlapText) > c.overlapChars {
					start := len(overlapText) - c.overlapChars
					// Never start the seed mid-rune.
					for start < len(overlapText) && !utf8.RuneStart(overlapText[start]) {
						start++
					}
					overlapText = overlapText[start:]
				}
				buffer = []core.Segment{{
					StartMS: tail.StartMS,
					EndMS:   tail.EndMS,
					Speaker: tail.Speaker,
					Text:    overlapText,
				}}
				bufferLen = len(overlapText)
			} else {
				buffer = nil
				bufferLen = 0
			}
		}
		buffer = append(buffer, seg)
		bufferLen += segLen
	}

	if len(buffer) > 0 {
		chunks = append(chunks, c.flush(buffer, documentID, seq))
	}
	return chunks
}

// flush builds a chunk from the buffered segments.
func (c *Chunker) flush(buffer []core.Segment, documentID core.ID, seq int) *core.Chunk {
	parts := make([]string, 0, len(buffer))
	for _, seg := range buffer {
		parts = append(parts, strings.TrimSpace(seg.Text))
	}
	text := strings.Join(parts, " ")

	tokens := len(strings.Fields(text))
	if tokens < 1 {
		tokens = 1
	}

	return &core.Chunk{
		Id:            core.ChunkIDFor(documentID, seq, text),
		DocumentId:    documentID,
		Seq:           seq,
		Speaker:       buffer[0].Speaker,
		StartMS:       buffer[0].StartMS,
		EndMS:         buffer[len(buffer)-1].EndMS,
		Text:          text,
		TokenEstimate: tokens,
	}
}
