package bootstrap

import (
	"context"
	"log"
	"os"
	"strings"

	"aroma-assistant-be/internal/config"
	"aroma-assistant-be/internal/controller"
	"aroma-assistant-be/internal/entity"
	"aroma-assistant-be/internal/pkg/logger"
	"aroma-assistant-be/internal/repository/implementation"
	"aroma-assistant-be/internal/repository/memory"
	"aroma-assistant-be/internal/service"
	"aroma-assistant-be/pkg/assistant"
	"aroma-assistant-be/pkg/catalog"
	"aroma-assistant-be/pkg/embedding"
	"aroma-assistant-be/pkg/llm/factory"
	"aroma-assistant-be/pkg/rag/index"
	"aroma-assistant-be/pkg/rag/responder"
	"aroma-assistant-be/pkg/speech"
	"aroma-assistant-be/pkg/telegram"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	WebhookController controller.IWebhookController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

// NewContainer wires the dialogue engine from config. db may be nil; the
// pgvector index backend and the relational catalog source then degrade to
// their file-based counterparts.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] Invalid configuration: %v", err)
	}

	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	ragLogger := log.New(os.Stdout, "[rag] ", log.LstdFlags)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.EmbeddingModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.EmbeddingModel)
	} else {
		embeddingProvider = embedding.NewOpenAIProvider(
			cfg.Keys.OpenAI,
			cfg.Ai.OpenAIBaseURL,
			cfg.Ai.EmbeddingModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Ai.EmbeddingModel)
	}

	llmBaseURL := cfg.Ai.OllamaBaseURL
	if cfg.Ai.LLMProvider == "openai" {
		llmBaseURL = cfg.Ai.OpenAIBaseURL
	}
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		llmBaseURL,
		cfg.Keys.OpenAI,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Knowledge Index
	knowledgeIndex, err := buildKnowledgeIndex(cfg, db, embeddingProvider)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize knowledge index: %v", err)
	}

	// 5. Catalog
	catalogRepo := implementation.NewCatalogRepository(db)
	catalogService := service.NewCatalogService(catalogRepo)
	cat := loadCatalog(cfg, db, catalogService)

	// 6. Session Storage
	sessionRepo := memory.NewSessionRepository()

	// 7. Open-Domain Responder
	var openDomain responder.OpenDomainResponder
	if cfg.Dialogue.OpenDomainStrategy == "assistant" && cfg.Ai.AssistantID != "" {
		threadAPI := assistant.NewOpenAIClient(cfg.Keys.OpenAI, cfg.Ai.OpenAIBaseURL)
		manager := assistant.NewManager(threadAPI, assistant.Config{
			AssistantID:  cfg.Ai.AssistantID,
			IdleLimit:    cfg.Dialogue.ThreadIdleLimit,
			PollInterval: assistant.DefaultConfig(cfg.Ai.AssistantID).PollInterval,
			MaxWait:      cfg.Dialogue.RunMaxWait,
		})
		openDomain = responder.NewAssistantResponder(manager)
		log.Printf("[INFO] Open-domain strategy: ASSISTANT (%s)", cfg.Ai.AssistantID)
	} else {
		openDomain = responder.NewRetrievalResponder(llmProvider, knowledgeIndex, responder.Config{
			TopK:            cfg.Dialogue.RetrievalTopK,
			ExtractKeywords: cfg.Dialogue.KeywordExtraction,
		}, ragLogger)
		log.Printf("[INFO] Open-domain strategy: RETRIEVAL (top-k %d)", cfg.Dialogue.RetrievalTopK)
	}

	// 8. Transport
	tgClient := telegram.NewClient(cfg.Keys.Telegram, cfg.Dialogue.MessageLimit)
	transcriber := speech.NewOpenAITranscriber(cfg.Keys.OpenAI, cfg.Ai.OpenAIBaseURL, "")

	// 9. Services
	dialogueService := service.NewDialogueService(
		sessionRepo,
		knowledgeIndex,
		cat,
		llmProvider,
		openDomain,
		tgClient,
		service.Commands{
			Greeting: cfg.Dialogue.CmdGreeting,
			Lookup:   cfg.Dialogue.CmdLookup,
			Mixture:  cfg.Dialogue.CmdMixture,
			Cancel:   cfg.Dialogue.CmdCancel,
		},
		cfg.Dialogue.SimilarityThreshold,
		cfg.Dialogue.LookupReformulate,
		sysLogger,
	)

	publisherService := service.NewPublisherService(cfg.App.InboundTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.InboundTopic,
		dialogueService,
		tgClient,
		tgClient,
		transcriber,
		sysLogger,
	)

	return &Container{
		WebhookController: controller.NewWebhookController(publisherService),
		ConsumerService:   consumerService,
	}
}

// buildKnowledgeIndex constructs the configured index backend. An
// unreadable corpus or index artifact is a fatal configuration error: the
// process must not serve with a silently missing knowledge base. Only an
// explicitly empty CORPUS_FILE runs without an index; search branches then
// answer with a fixed unavailability message.
func buildKnowledgeIndex(cfg *config.Config, db *gorm.DB, embedder embedding.EmbeddingProvider) (index.KnowledgeIndex, error) {
	if cfg.Dialogue.CorpusFile == "" {
		log.Printf("[WARN] No corpus configured; knowledge search is disabled")
		return nil, nil
	}

	if cfg.Dialogue.IndexBackend == "pgvector" && db != nil {
		idx, err := index.NewPgvectorIndex(db, embedder, cfg.Dialogue.CorpusFile)
		if err != nil {
			return nil, err
		}
		log.Printf("[INFO] Knowledge index: pgvector")
		return idx, nil
	}

	idx, err := index.LoadOrBuildFileIndex(cfg.Dialogue.IndexFile, cfg.Dialogue.CorpusFile, embedder)
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] Knowledge index: file (%d chunks)", idx.Len())
	return idx, nil
}

// loadCatalog resolves the configured catalog source. A missing catalog is
// survivable: the mixture flow then reports every item as unknown instead of
// failing turns.
func loadCatalog(cfg *config.Config, db *gorm.DB, catalogService service.ICatalogService) *catalog.Catalog {
	source := cfg.Dialogue.CatalogSource
	dropsPerUnit := cfg.Dialogue.DropsPerUnit

	var (
		cat *catalog.Catalog
		err error
	)
	switch {
	case source == "db" && db != nil:
		if err = db.AutoMigrate(&entity.CatalogItem{}); err != nil {
			break
		}
		var entries []catalog.Entry
		entries, err = catalogService.LoadEntries(context.Background())
		if err == nil {
			cat = catalog.New(entries, dropsPerUnit)
		}
	case strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://"):
		cat, err = catalog.LoadFromURL(source, dropsPerUnit)
	default:
		cat, err = catalog.LoadFromFile(source, dropsPerUnit)
	}

	if err != nil || cat == nil {
		log.Printf("[WARN] catalog unavailable (%s): %v", source, err)
		return catalog.Empty(dropsPerUnit)
	}

	// Mirror file and URL catalogs into the relational store when one is
	// attached, so ops can inspect and edit prices there.
	if source != "db" && db != nil {
		if err := db.AutoMigrate(&entity.CatalogItem{}); err == nil {
			if err := catalogService.Sync(context.Background(), cat.Entries()); err != nil {
				log.Printf("[WARN] catalog sync skipped: %v", err)
			}
		}
	}

	log.Printf("[INFO] Catalog loaded: %d items", cat.Len())
	return cat
}
