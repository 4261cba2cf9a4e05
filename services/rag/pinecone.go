package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"medibook/models"
)

// PineconeClient queries and writes a hosted Pinecone index over its
// REST API. The index host is the per-index endpoint, e.g.
// https://medibook-xxxx.svc.us-east-1-aws.pinecone.io.
type PineconeClient struct {
	host     string
	apiKey   string
	embedder Embedder
	client   *http.Client
}

func NewPineconeClient(host, apiKey string, embedder Embedder) *PineconeClient {
	return &PineconeClient{
		host:     host,
		apiKey:   apiKey,
		embedder: embedder,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

type pineconeQueryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

type pineconeQueryResponse struct {
	Matches []struct {
		ID       string            `json:"id"`
		Score    float64           `json:"score"`
		Metadata map[string]string `json:"metadata"`
	} `json:"matches"`
}

// Query embeds the text and runs a similarity search, returning passages
// ordered by score.
func (p *PineconeClient) Query(ctx context.Context, text string, topK int) ([]models.Passage, error) {
	vector, err := p.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	var resp pineconeQueryResponse
	if err := p.post(ctx, "/query", pineconeQueryRequest{
		Vector:          vector,
		TopK:            topK,
		IncludeMetadata: true,
	}, &resp); err != nil {
		return nil, err
	}

	passages := make([]models.Passage, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		passages = append(passages, models.Passage{
			Text:   m.Metadata["text"],
			Source: m.Metadata["source"],
			Score:  m.Score,
		})
	}
	return passages, nil
}

type pineconeUpsertRequest struct {
	Vectors []Vector `json:"vectors"`
}

// Upsert writes embedded chunks into the index.
func (p *PineconeClient) Upsert(ctx context.Context, vectors []Vector) error {
	var resp struct {
		UpsertedCount int `json:"upsertedCount"`
	}
	return p.post(ctx, "/vectors/upsert", pineconeUpsertRequest{Vectors: vectors}, &resp)
}

func (p *PineconeClient) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal pinecone request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build pinecone request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("call pinecone: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pinecone returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode pinecone response: %w", err)
	}
	return nil
}
