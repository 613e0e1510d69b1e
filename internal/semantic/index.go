// Package semantic provides the vector-index capability used by the matching
// engine, backed by Gemini text embeddings and in-process cosine similarity.
package semantic

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const defaultModel = "text-embedding-004"

// Index computes bounded similarity between two texts. Embeddings are cached
// by content hash so identical inputs are deterministic within one process.
type Index struct {
	client    *genai.Client
	modelName string
	logger    *zap.Logger

	cacheMu sync.RWMutex
	cache   map[string][]float32
}

// NewIndex creates an Index configured for the Gemini API backend.
func NewIndex(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Index, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Index{
		client:    client,
		modelName: model,
		logger:    logger,
		cache:     make(map[string][]float32),
	}, nil
}

// Similarity returns the cosine similarity of the two texts clamped to [0,1].
// Empty input on either side yields 0 rather than an error.
func (i *Index) Similarity(ctx context.Context, a, b string) (float64, error) {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return 0, nil
	}

	va, err := i.embed(ctx, a)
	if err != nil {
		return 0, err
	}

	vb, err := i.embed(ctx, b)
	if err != nil {
		return 0, err
	}

	return Cosine(va, vb), nil
}

func (i *Index) embed(ctx context.Context, text string) ([]float32, error) {
	hash := fmt.Sprintf("%x", sha256.Sum256([]byte(text)))

	i.cacheMu.RLock()
	cached, ok := i.cache[hash]
	i.cacheMu.RUnlock()
	if ok {
		return cached, nil
	}

	resp, err := i.client.Models.EmbedContent(ctx, i.modelName, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}

	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, errors.New("gemini api returned empty embedding")
	}

	vector := resp.Embeddings[0].Values

	i.cacheMu.Lock()
	i.cache[hash] = vector
	i.cacheMu.Unlock()

	i.logger.Debug("embedded text",
		zap.String("model", i.modelName),
		zap.Int("dimensions", len(vector)),
	)

	return vector, nil
}

func (i *Index) Model() string {
	if i == nil {
		return ""
	}
	return i.modelName
}

// Cosine computes the cosine similarity of two vectors, clamped to [0,1].
// Mismatched or zero-length vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for idx := range a {
		dot += float64(a[idx]) * float64(b[idx])
		normA += float64(a[idx]) * float64(a[idx])
		normB += float64(b[idx]) * float64(b[idx])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if cos < 0 {
		return 0
	}
	if cos > 1 {
		return 1
	}
	return cos
}
