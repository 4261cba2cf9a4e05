package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const hfBaseURL = "https://api-inference.huggingface.co/pipeline/feature-extraction/"

// HuggingFaceEmbedder calls the HuggingFace inference API for sentence
// embeddings (default model: all-MiniLM-L6-v2, 384 dimensions).
type HuggingFaceEmbedder struct {
	model  string
	apiKey string
	client *http.Client
}

func NewHuggingFaceEmbedder(model, apiKey string) *HuggingFaceEmbedder {
	return &HuggingFaceEmbedder{
		model:  model,
		apiKey: apiKey,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type hfRequest struct {
	Inputs  []string `json:"inputs"`
	Options struct {
		WaitForModel bool `json:"wait_for_model"`
	} `json:"options"`
}

func (e *HuggingFaceEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, got %d", len(vectors))
	}
	return vectors[0], nil
}

func (e *HuggingFaceEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	payload := hfRequest{Inputs: texts}
	payload.Options.WaitForModel = true

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hfBaseURL+e.model, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call embedding service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding service returned status %d", resp.StatusCode)
	}

	var vectors [][]float32
	if err := json.NewDecoder(resp.Body).Decode(&vectors); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(vectors))
	}
	return vectors, nil
}
