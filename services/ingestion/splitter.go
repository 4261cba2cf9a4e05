package ingestion

import "strings"

const (
	defaultChunkSize    = 500
	defaultChunkOverlap = 20
)

// Chunk is one passage of a source document.
type Chunk struct {
	Text   string
	Source string
	Index  int
}

// splitText breaks text into chunks of roughly chunkSize characters,
// preferring to break on whitespace, with overlap characters carried
// between neighbours so passages keep their local context.
func splitText(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = defaultChunkOverlap
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + chunkSize
		if end >= len(text) {
			if chunk := strings.TrimSpace(text[start:]); chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		// Back up to the last whitespace so words stay intact.
		cut := end
		for cut > start && !isSpace(text[cut]) {
			cut--
		}
		if cut == start {
			cut = end
		}

		if chunk := strings.TrimSpace(text[start:cut]); chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := cut - overlap
		if next <= start {
			next = cut
		}
		start = next
	}
	return chunks
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t' || b == '\r'
}
