package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"oura-ai/internal/adapter/embedding"
	"oura-ai/internal/adapter/gateway"
	"oura-ai/internal/adapter/healthdata"
	"oura-ai/internal/adapter/llm"
	"oura-ai/internal/adapter/memory"
	"oura-ai/internal/adapter/tool"
	"oura-ai/internal/domain"
	"oura-ai/internal/infra/config"
	"oura-ai/internal/infra/logger"
	"oura-ai/internal/infra/tracer"
	"oura-ai/internal/usecase"
	"oura-ai/internal/usecase/eventbus"
	"oura-ai/internal/usecase/scheduling"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "--help", "-h", "help":
			showUsage()
			return
		}
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`oura-ai - Multi-agent health assistant for Oura ring data

USAGE:
    oura-ai [FLAGS]

FLAGS:
    -h, --help         Show this help message
    --config PATH      Specify config file path (default: ./config.yaml)

CONFIGURATION:
    Config file: ./config.yaml
    Environment: OURAAI_* variables override config

EXAMPLES:
    oura-ai                                  # Run with config.yaml
    oura-ai --config /path/to/config.yaml    # Run with custom config
    OURAAI_LLM_ANTHROPIC_API_KEY=sk-... oura-ai`)
}

func configPath() string {
	for i, arg := range os.Args {
		if arg == "--config" && i+1 < len(os.Args) {
			return os.Args[i+1]
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	if p := os.Getenv("OURAAI_CONFIG"); p != "" {
		return p
	}
	return "config.yaml"
}

func run() error {
	// 1. Config (missing file falls back to defaults + env overrides)
	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// 2. Logger & Tracer
	log, logCloser, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logCloser()

	ctx := context.Background()
	tracerShutdown, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	defer tracerShutdown(ctx)

	// 3. LLM providers
	provider, llmRegistry, err := buildLLM(cfg, log)
	if err != nil {
		return fmt.Errorf("llm: %w", err)
	}

	// 4. Event bus
	bus := eventbus.New(log)
	defer bus.Close()

	// 5. Stores
	healthStore, err := healthdata.New(cfg.Health.DBPath)
	if err != nil {
		return fmt.Errorf("health store: %w", err)
	}
	defer healthStore.Close()

	embedder := buildEmbedder(cfg.Memory)

	if err := os.MkdirAll(cfg.Memory.DataDir, 0o700); err != nil {
		return fmt.Errorf("memory dir: %w", err)
	}
	episodic, err := memory.NewEpisodic(filepath.Join(cfg.Memory.DataDir, "episodic.db"), embedder, log)
	if err != nil {
		return fmt.Errorf("episodic memory: %w", err)
	}
	defer episodic.Close()

	longterm, err := memory.NewLongTerm(filepath.Join(cfg.Memory.DataDir, "longterm.db"), log)
	if err != nil {
		return fmt.Errorf("long-term memory: %w", err)
	}
	defer longterm.Close()

	conversations := usecase.NewConversationManager(cfg.Agent.DataDir)

	trimmer, err := usecase.NewTranscriptTrimmer(cfg.Agent.Transcript, log)
	if err != nil {
		return fmt.Errorf("transcript trimmer: %w", err)
	}

	// 6. Specialists
	specialists := buildSpecialists(cfg, provider, conversations, trimmer, healthStore, episodic, longterm, bus, log)

	// 7. Supervisor
	supervisor := usecase.NewSupervisor(usecase.SupervisorDeps{
		Provider:    provider,
		Registry:    specialists,
		Store:       conversations,
		Trimmer:     trimmer,
		Bus:         bus,
		Logger:      log,
		Timeout:     cfg.Agent.Timeout,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	})

	// 8. Graceful shutdown
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 9. Scheduler
	if cfg.Scheduler.Enabled {
		scheduler, err := buildScheduler(cfg, healthStore, longterm, conversations, bus, log)
		if err != nil {
			return fmt.Errorf("scheduler: %w", err)
		}
		go scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	// 10. Health gateway
	var gwServer *gateway.Server
	if cfg.Gateway.Enabled {
		gwServer = gateway.NewServer(cfg.Gateway.Addr, healthStore, log)
		go func() {
			if err := gwServer.Start(ctx); err != nil {
				log.Error("gateway server error", "error", err)
			}
		}()
	}

	// 11. Channels
	channels, err := buildChannels(cfg, log)
	if err != nil {
		return err
	}
	if len(channels) == 0 {
		return fmt.Errorf("no channels configured (add a discord or slack channel to config.yaml)")
	}

	// 12. Message handler
	handler := func(send func(context.Context, domain.OutboundMessage) error, adapterName string) domain.MessageHandler {
		return func(ctx context.Context, msg domain.InboundMessage) error {
			sessionID := usecase.NewSessionID()
			reply := supervisor.Process(ctx, msg.Content, msg.SenderID, threadChannel(msg, adapterName), sessionID)

			if err := send(ctx, domain.OutboundMessage{
				Content:   reply,
				GroupID:   msg.GroupID,
				ReplyToID: msg.MessageID,
				ThreadID:  msg.ThreadID,
			}); err != nil {
				return err
			}

			if gwServer != nil {
				gwServer.MarkHandled()
			}

			saveCtx := domain.ContextWithUserID(ctx, msg.SenderID)
			if _, err := episodic.SaveExchange(saveCtx, msg.SenderID, sessionID, msg.Content, reply); err != nil {
				log.Warn("episodic save failed", "user", msg.SenderID, "error", err)
			}
			return nil
		}
	}

	// 13. Start
	log.Info("oura-ai starting",
		"provider", provider.Name(),
		"providers", llmRegistry.List(),
		"specialists", len(specialists.Names()),
		"channels", len(channels),
		"gateway", cfg.Gateway.Enabled,
		"scheduler", cfg.Scheduler.Enabled,
	)

	var wg sync.WaitGroup
	errCh := make(chan error, len(channels))

	for _, ch := range channels {
		wg.Add(1)
		go func(c domain.Channel) {
			defer wg.Done()
			if err := c.Start(ctx, handler(c.Send, c.Name())); err != nil {
				errCh <- fmt.Errorf("channel %s: %w", c.Name(), err)
			}
		}(ch)
	}

	<-ctx.Done()
	wg.Wait()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	for _, ch := range channels {
		if err := ch.Stop(stopCtx); err != nil {
			log.Warn("channel stop failed", "channel", ch.Name(), "error", err)
		}
	}
	if gwServer != nil {
		if err := gwServer.Stop(stopCtx); err != nil {
			log.Warn("gateway stop failed", "error", err)
		}
	}

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

// threadChannel picks the channel component of the conversation thread key.
// Threads are keyed per (user, channel), so the real channel id the message
// arrived in must win; the adapter name is only a fallback for transports
// that do not report one.
func threadChannel(msg domain.InboundMessage, adapterName string) string {
	if msg.GroupID != "" {
		return msg.GroupID
	}
	return adapterName
}

// buildLLM creates every configured provider, wraps it with the resilience
// layers, and registers it. Returns the default provider and the registry.
func buildLLM(cfg *config.Config, log *slog.Logger) (domain.LLMProvider, *llm.Registry, error) {
	if len(cfg.LLM.Providers) == 0 {
		return nil, nil, fmt.Errorf("no providers configured")
	}

	registry := llm.NewRegistry()
	for _, pc := range cfg.LLM.Providers {
		provider, err := createLLMProvider(pc, log)
		if err != nil {
			return nil, nil, fmt.Errorf("provider %s: %w", pc.Name, err)
		}
		if cfg.LLM.CircuitBreaker.Enabled {
			provider = llm.NewCircuitBreakerProvider(provider, cfg.LLM.CircuitBreaker, log)
		}
		if cfg.LLM.RateLimit.Enabled {
			provider = llm.NewRateLimitedProvider(provider, cfg.LLM.RateLimit, log)
		}
		if err := registry.Register(provider); err != nil {
			return nil, nil, err
		}
	}

	provider, err := registry.Get(cfg.LLM.DefaultProvider)
	if err != nil {
		return nil, nil, err
	}
	return provider, registry, nil
}

// createLLMProvider creates an LLM provider based on the type field.
func createLLMProvider(pc config.ProviderConfig, log *slog.Logger) (domain.LLMProvider, error) {
	switch pc.Type {
	case "anthropic", "":
		return llm.NewAnthropicProvider(pc, log), nil
	case "bedrock":
		return createBedrockProvider(pc, log)
	default:
		return nil, fmt.Errorf("unknown provider type: %s", pc.Type)
	}
}

// buildEmbedder creates the embedding provider for episodic memory search,
// with an optional LRU cache in front.
func buildEmbedder(cfg config.MemoryConfig) domain.EmbeddingProvider {
	var opts []embedding.OllamaOption
	if cfg.Embedding.BaseURL != "" {
		opts = append(opts, embedding.WithOllamaBaseURL(cfg.Embedding.BaseURL))
	}
	if cfg.Embedding.Model != "" {
		opts = append(opts, embedding.WithOllamaModel(cfg.Embedding.Model))
	}
	if cfg.Embedding.Dimensions > 0 {
		opts = append(opts, embedding.WithOllamaDimensions(cfg.Embedding.Dimensions))
	}

	var embedder domain.EmbeddingProvider = embedding.NewOllamaProvider(opts...)
	if cfg.Search.EmbeddingCacheSize > 0 {
		embedder = embedding.NewCachedEmbedder(embedder, cfg.Search.EmbeddingCacheSize)
	}
	return embedder
}

// buildSpecialists wires each specialist with its own tool registry and
// registers all four with the lookup the supervisor routes against.
func buildSpecialists(
	cfg *config.Config,
	provider domain.LLMProvider,
	conversations *usecase.ConversationManager,
	trimmer *usecase.TranscriptTrimmer,
	healthStore domain.HealthStore,
	episodic domain.EpisodicMemory,
	longterm domain.LongTermMemory,
	bus domain.EventBus,
	log *slog.Logger,
) *usecase.SpecialistRegistry {
	validator := healthdata.NewValidator()
	deps := usecase.SpecialistDeps{
		Provider:    provider,
		Store:       conversations,
		Trimmer:     trimmer,
		Bus:         bus,
		Logger:      log,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	}

	newRegistry := func(tools []domain.Tool) *tool.Registry {
		r := tool.NewRegistry(log)
		if err := r.RegisterAll(tools...); err != nil {
			// Registration only fails on duplicate names, a programming error.
			panic(err)
		}
		return r
	}

	specialists := usecase.NewSpecialistRegistry(log)
	specialists.Register(usecase.NewSleepAnalyst(
		newRegistry(tool.NewSleepToolset(healthStore, validator, log).Tools()), deps))
	specialists.Register(usecase.NewFitnessCoach(
		newRegistry(tool.NewFitnessToolset(healthStore, validator, log).Tools()), deps))
	specialists.Register(usecase.NewMemoryKeeper(
		newRegistry(tool.NewMemoryToolset(episodic, longterm, log).Tools()), deps))
	specialists.Register(usecase.NewDataAuditor(
		newRegistry(tool.NewAuditToolset(healthStore, validator, log).Tools()), deps))
	return specialists
}

// buildScheduler registers the maintenance actions and adds every configured
// task.
func buildScheduler(
	cfg *config.Config,
	healthStore domain.HealthStore,
	longterm domain.LongTermMemory,
	conversations *usecase.ConversationManager,
	bus domain.EventBus,
	log *slog.Logger,
) (*scheduling.Scheduler, error) {
	scheduler := scheduling.NewScheduler(log)

	baselines := usecase.NewBaselineComputer(healthStore, longterm, bus, log)
	scheduler.RegisterAction(scheduling.ActionComputeBaselines, func(ctx context.Context, task scheduling.ScheduledTask) error {
		return baselines.Compute(ctx, task.UserID, task.WindowDays)
	})
	scheduler.RegisterAction(scheduling.ActionReapThreads, func(_ context.Context, task scheduling.ScheduledTask) error {
		reaped := conversations.ReapStale(task.MaxAge)
		log.Info("stale threads reaped", "count", reaped, "max_age", task.MaxAge)
		return nil
	})

	for _, tc := range cfg.Scheduler.Tasks {
		if err := scheduler.AddTask(scheduling.ScheduledTask{
			Name:       tc.Name,
			Schedule:   tc.Schedule,
			Action:     scheduling.ScheduledAction(tc.Action),
			UserID:     tc.UserID,
			WindowDays: tc.WindowDays,
			MaxAge:     tc.MaxAge,
		}); err != nil {
			return nil, err
		}
	}
	return scheduler, nil
}

// buildChannels creates channels based on config.
func buildChannels(cfg *config.Config, log *slog.Logger) ([]domain.Channel, error) {
	var channels []domain.Channel
	for _, cc := range cfg.Channels {
		switch cc.Type {
		case "discord":
			ch, err := buildDiscordChannel(cc, log)
			if err != nil {
				return nil, fmt.Errorf("discord: %w", err)
			}
			channels = append(channels, ch)
		case "slack":
			ch, err := buildSlackChannel(cc, log)
			if err != nil {
				return nil, fmt.Errorf("slack: %w", err)
			}
			channels = append(channels, ch)
		default:
			return nil, fmt.Errorf("unknown channel type: %s", cc.Type)
		}
	}
	return channels, nil
}
