package embedding

import (
	"context"
	"fmt"
	"time"

	"samsara/internal/logging"

	"google.golang.org/genai"
)

// =============================================================================
// GOOGLE GENAI EMBEDDING ENGINE
// =============================================================================

// defaultDimensions is used when the caller passes dimensions <= 0.
// gemini-embedding-001 natively produces 3072-dimensional vectors; samsara
// requests a Matryoshka-truncated size instead so GenAI vectors can sit in
// the same embedding_entries table as the fallback hash embedder without a
// dimension mismatch at comparison time (see CosineSimilarity).
const defaultDimensions = 3072

func int32Ptr(i int32) *int32 {
	return &i
}

// GenAIEngine generates embeddings for the recall engine using Google's
// Gemini embedding API. It implements collab.EmbeddingService.
type GenAIEngine struct {
	client     *genai.Client
	model      string
	taskType   string
	dimensions int32
}

// NewGenAIEngine creates a new GenAI embedding engine. dimensions controls
// the Matryoshka-truncated OutputDimensionality requested from the API;
// pass <= 0 to use defaultDimensions. Callers normally pass
// Config.Embedding.Dimensions so the fallback hash embedder and the GenAI
// provider agree on vector width within a single store.
func NewGenAIEngine(apiKey, model, taskType string, dimensions int) (*GenAIEngine, error) {
	timer := logging.StartTimer(logging.CategoryEmbedding, "NewGenAIEngine")
	defer timer.Stop()

	logging.Embedding("Creating GenAI embedding engine")

	if apiKey == "" {
		logging.Get(logging.CategoryEmbedding).Error("GenAI API key is required but not provided")
		return nil, fmt.Errorf("GenAI API key is required")
	}
	logging.EmbeddingDebug("GenAI API key provided (length=%d)", len(apiKey))

	if model == "" {
		model = "gemini-embedding-001"
		logging.EmbeddingDebug("GenAI model defaulted to: %s", model)
	}

	if taskType == "" {
		taskType = "SEMANTIC_SIMILARITY"
		logging.EmbeddingDebug("GenAI taskType defaulted to: %s", taskType)
	}

	if dimensions <= 0 {
		dimensions = defaultDimensions
		logging.EmbeddingDebug("GenAI dimensions defaulted to: %d", dimensions)
	}

	logging.Embedding("Initializing GenAI client: model=%s, task_type=%s, dimensions=%d", model, taskType, dimensions)

	ctx := context.Background()
	clientStart := time.Now()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	clientLatency := time.Since(clientStart)

	if err != nil {
		logging.Get(logging.CategoryEmbedding).Error("Failed to create GenAI client after %v: %v", clientLatency, err)
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	logging.Embedding("GenAI client created successfully in %v", clientLatency)

	return &GenAIEngine{
		client:     client,
		model:      model,
		taskType:   taskType,
		dimensions: int32(dimensions),
	}, nil
}

// Embed generates an embedding for a single text and audits the round trip
// so embedding_request/embedding_error events show up alongside route and
// recall events in the audit log.
func (e *GenAIEngine) Embed(ctx context.Context, text string) ([]float32, error) {
	timer := logging.StartTimer(logging.CategoryEmbedding, "GenAI.Embed")

	textLen := len(text)
	logging.EmbeddingDebug("GenAI.Embed: starting embed request, text_length=%d chars, model=%s, task_type=%s", textLen, e.model, e.taskType)

	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}

	logging.EmbeddingDebug("GenAI.Embed: calling EmbedContent API")
	apiStart := time.Now()

	result, err := e.client.Models.EmbedContent(ctx,
		e.model,
		contents,
		&genai.EmbedContentConfig{
			OutputDimensionality: int32Ptr(e.dimensions),
		},
	)
	apiLatency := time.Since(apiStart)
	providerName := fmt.Sprintf("genai:%s", e.model)

	if err != nil {
		logging.Get(logging.CategoryEmbedding).Error("GenAI.Embed: API call failed after %v: %v", apiLatency, err)
		logging.Audit().EmbeddingCall(providerName, int(e.dimensions), apiLatency.Milliseconds(), false, err.Error())
		return nil, fmt.Errorf("GenAI embed failed: %w", err)
	}

	if len(result.Embeddings) == 0 {
		logging.Get(logging.CategoryEmbedding).Error("GenAI.Embed: no embeddings returned from API")
		logging.Audit().EmbeddingCall(providerName, int(e.dimensions), apiLatency.Milliseconds(), false, "no embeddings returned")
		return nil, fmt.Errorf("no embeddings returned")
	}

	dimensions := len(result.Embeddings[0].Values)
	timer.Stop()
	logging.Embedding("GenAI.Embed: completed successfully, dimensions=%d, api_latency=%v", dimensions, apiLatency)
	logging.Audit().EmbeddingCall(providerName, dimensions, apiLatency.Milliseconds(), true, "")

	return result.Embeddings[0].Values, nil
}

// Close is a no-op for GenAI client (no cleanup needed).
func (e *GenAIEngine) Close() error {
	return nil
}
