package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/whrealtors/realty-web/internal/assistant"
	"github.com/whrealtors/realty-web/internal/catalog"
	appconfig "github.com/whrealtors/realty-web/internal/config"
	"github.com/whrealtors/realty-web/internal/observability/metrics"
	"github.com/whrealtors/realty-web/pkg/logging"
)

const (
	LLMProviderNone    = "none"
	LLMProviderBedrock = "bedrock"
	LLMProviderGemini  = "gemini"
)

// BedrockRuntime is the slice of *bedrockruntime.Client the assistant uses.
type BedrockRuntime interface {
	assistant.BedrockConverseAPI
	assistant.BedrockInvokeModelAPI
}

// BuildLLMClient selects the model backend from LLM_PROVIDER. A nil client
// with a nil error means the assistant is switched off. The returned close
// func is always safe to call.
func BuildLLMClient(ctx context.Context, cfg *appconfig.Config, bedrock BedrockRuntime, logger *logging.Logger) (assistant.LLMClient, func(), error) {
	noop := func() {}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg == nil {
		return nil, noop, nil
	}

	switch provider := strings.ToLower(strings.TrimSpace(cfg.LLMProvider)); provider {
	case "", LLMProviderNone:
		logger.Info("project assistant disabled")
		return nil, noop, nil
	case LLMProviderBedrock:
		if bedrock == nil {
			return nil, noop, fmt.Errorf("bootstrap: bedrock provider selected without a runtime client")
		}
		logger.Info("project assistant using bedrock", "model", cfg.BedrockModelID)
		return assistant.NewBedrockLLMClient(bedrock), noop, nil
	case LLMProviderGemini:
		client, err := assistant.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, noop, fmt.Errorf("bootstrap: gemini client: %w", err)
		}
		logger.Info("project assistant using gemini", "model", cfg.GeminiModel)
		return client, func() {
			if err := client.Close(); err != nil {
				logger.Warn("failed to close gemini client", "error", err)
			}
		}, nil
	default:
		return nil, noop, fmt.Errorf("bootstrap: unknown LLM_PROVIDER %q", provider)
	}
}

// BuildAssistant indexes the catalog's assistant knowledge and returns the
// reply service, or nil when llm is nil. Passages are embedded with Bedrock
// when BEDROCK_EMBEDDING_MODEL_ID is set; if indexing with embeddings fails
// the store is rebuilt with lexical ranking only.
func BuildAssistant(ctx context.Context, cfg *appconfig.Config, cat *catalog.Catalog, llm assistant.LLMClient, bedrock BedrockRuntime, m *metrics.AssistantMetrics, logger *logging.Logger) (*assistant.Service, error) {
	if llm == nil {
		return nil, nil
	}
	if cfg == nil || cat == nil {
		return nil, fmt.Errorf("bootstrap: assistant needs config and catalog")
	}
	if logger == nil {
		logger = logging.Default()
	}
	log := logger.Component("assistant")

	var embedder assistant.Embedder
	if bedrock != nil && strings.TrimSpace(cfg.BedrockEmbeddingModelID) != "" {
		embedder = assistant.NewBedrockEmbedder(bedrock, cfg.BedrockEmbeddingModelID)
	}

	store := assistant.NewKnowledgeStore(embedder, log)
	indexed, err := assistant.LoadCatalogKnowledge(ctx, store, cat)
	if err != nil && embedder != nil {
		log.Warn("embedding project knowledge failed; using keyword ranking", "error", err)
		store = assistant.NewKnowledgeStore(nil, log)
		indexed, err = assistant.LoadCatalogKnowledge(ctx, store, cat)
	}
	if err != nil {
		return nil, fmt.Errorf("bootstrap: index project knowledge: %w", err)
	}
	log.Info("project knowledge indexed", "projects", indexed, "embeddings", embedder != nil)

	opts := []assistant.Option{
		assistant.WithKnowledge(store),
		assistant.WithMetrics(m),
		assistant.WithModeration(cfg.AssistantModeration),
		assistant.WithMaxTokens(int32(cfg.AssistantMaxTokens)),
	}
	if strings.EqualFold(strings.TrimSpace(cfg.LLMProvider), LLMProviderBedrock) {
		opts = append(opts, assistant.WithModel(cfg.BedrockModelID))
	}
	return assistant.NewService(llm, cat, log, opts...), nil
}
