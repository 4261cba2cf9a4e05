// Package ingestion is the offline batch job that loads PDF documents,
// splits them into passages, embeds them and upserts the vectors into
// the hosted index. It is never invoked at request time; its only
// contract with the rest of the system is that the index is populated
// before the first query.
package ingestion

import (
	"context"
	"fmt"
	"path/filepath"

	"medibook/services/rag"
	"medibook/utils"

	"go.uber.org/zap"
)

const embedBatchSize = 32

// Service runs the PDF -> chunks -> embeddings -> index pipeline.
type Service struct {
	embedder rag.Embedder
	writer   rag.VectorWriter

	ChunkSize    int
	ChunkOverlap int
}

func NewService(embedder rag.Embedder, writer rag.VectorWriter) *Service {
	return &Service{
		embedder:     embedder,
		writer:       writer,
		ChunkSize:    defaultChunkSize,
		ChunkOverlap: defaultChunkOverlap,
	}
}

// IngestDirectory processes every PDF directly under dir. Returns the
// number of chunks written.
func (s *Service) IngestDirectory(ctx context.Context, dir string) (int, error) {
	logger := utils.GetLogger()

	paths, err := listPDFs(dir)
	if err != nil {
		return 0, err
	}
	if len(paths) == 0 {
		return 0, fmt.Errorf("no PDF files found in %s", dir)
	}

	var chunks []Chunk
	for _, path := range paths {
		text, err := loadPDFText(path)
		if err != nil {
			return 0, err
		}
		source := filepath.Base(path)
		for i, t := range splitText(text, s.ChunkSize, s.ChunkOverlap) {
			chunks = append(chunks, Chunk{Text: t, Source: source, Index: i})
		}
		logger.Info("Loaded document", zap.String("source", source))
	}

	if err := s.indexChunks(ctx, chunks); err != nil {
		return 0, err
	}

	logger.Info("Ingestion complete",
		zap.Int("documents", len(paths)),
		zap.Int("chunks", len(chunks)))
	return len(chunks), nil
}

func (s *Service) indexChunks(ctx context.Context, chunks []Chunk) error {
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		embeddings, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding batch at %d: %w", start, err)
		}

		vectors := make([]rag.Vector, len(batch))
		for i, c := range batch {
			vectors[i] = rag.Vector{
				ID:     fmt.Sprintf("%s-%d", c.Source, c.Index),
				Values: embeddings[i],
				Metadata: map[string]string{
					"text":   c.Text,
					"source": c.Source,
				},
			}
		}

		if err := s.writer.Upsert(ctx, vectors); err != nil {
			return fmt.Errorf("upserting batch at %d: %w", start, err)
		}
	}
	return nil
}
