package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"LookupBot/internal/config"
	"LookupBot/internal/infrastructure/llm"
	"LookupBot/internal/infrastructure/metrics"
	"LookupBot/internal/infrastructure/scheduler"
	"LookupBot/internal/infrastructure/sources"
	"LookupBot/internal/infrastructure/storage"
	"LookupBot/internal/infrastructure/telegram"
	"LookupBot/internal/logging"
	"LookupBot/internal/ports"
	"LookupBot/internal/session"
	"LookupBot/internal/source"
	"LookupBot/internal/usecase"
)

const shutdownTimeout = 5 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg     config.Config
	logger  *slog.Logger
	poller  *telegram.Poller
	janitor *usecase.Janitor
	repo    *storage.Repository
	admin   *http.Server
}

// New builds the bot: sources, storage, assistant, metrics and the Telegram poller.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	baseLogger = logging.OrDiscard(baseLogger)
	if cfg.Telegram.BotToken == "" {
		return nil, errors.New("telegram bot token is not configured")
	}

	collector := metrics.NewCollector()

	srcs, primary, err := buildSources(cfg, baseLogger)
	if err != nil {
		return nil, err
	}

	historyPrefix := ""
	if len(cfg.Wikipedia) > 0 {
		historyPrefix = cfg.Wikipedia[0].HistoryPrefix
	}
	retriever := usecase.NewRetriever(usecase.RetrieverDeps{
		Sources:         srcs,
		Primary:         primary,
		Metrics:         collector,
		Logger:          baseLogger.With("component", "retriever"),
		FastPathTimeout: cfg.Lookup.FastPathTimeout,
		Progress:        progressSteps(cfg.Lookup.ProgressSteps),
		HistoryPrefix:   historyPrefix,
	})

	application := &Application{cfg: cfg, logger: baseLogger}

	var repository ports.Repository
	if cfg.Database.Driver != storage.DriverNone {
		repo, err := storage.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		application.repo = repo
		repository = repo
	} else {
		baseLogger.Warn("persistence disabled")
	}

	assistant, janitor, err := buildAssistant(cfg.Assistant, baseLogger)
	if err != nil {
		application.close()
		return nil, err
	}
	application.janitor = janitor

	client := telegram.NewClient(cfg.Telegram.APIURL, cfg.Telegram.BotToken, cfg.Telegram.PollTimeout)
	bot := usecase.NewBot(usecase.BotDeps{
		Retriever:    retriever,
		Messenger:    client,
		Repository:   repository,
		Assistant:    assistant,
		Metrics:      collector,
		Logger:       baseLogger.With("component", "bot"),
		HistoryLimit: cfg.Lookup.HistoryLimit,
	})
	application.poller = telegram.NewPoller(client, bot.Handle, cfg.Telegram.PollTimeout, baseLogger.With("component", "telegram.poller"))

	if cfg.Admin.Addr != "" {
		checks := map[string]metrics.HealthCheck{}
		if application.repo != nil {
			checks["database"] = application.repo.Ping
		}
		application.admin = &http.Server{
			Addr:              cfg.Admin.Addr,
			Handler:           metrics.Router(collector, checks),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	return application, nil
}

func buildSources(cfg config.Config, logger *slog.Logger) ([]ports.Source, ports.Encyclopedia, error) {
	httpClient := &http.Client{Timeout: cfg.Lookup.RequestTimeout}
	registry := source.NewRegistry()
	guard := func(src ports.Source) ports.Source {
		if !cfg.Breaker.Enabled {
			return src
		}
		return sources.Guard(src, sources.BreakerSettings{
			MaxRequests:      cfg.Breaker.MaxRequests,
			Interval:         cfg.Breaker.Interval,
			Timeout:          cfg.Breaker.Timeout,
			FailureThreshold: cfg.Breaker.FailureThreshold,
			MinRequests:      cfg.Breaker.MinRequests,
		}, logger.With("component", "sources.breaker"))
	}

	var primary ports.Encyclopedia
	for _, w := range cfg.Wikipedia {
		wiki := sources.NewWikipedia(sources.Edition{
			Name:    w.Name,
			Label:   w.Label,
			APIURL:  w.APIURL,
			RestURL: w.RestURL,
		}, httpClient, cfg.Lookup.UserAgent)
		if primary == nil {
			primary = wiki
		}
		registry.Register(guard(wiki))
	}
	registry.Register(guard(sources.NewDuckDuckGo(cfg.DuckDuckGo.Endpoint, cfg.DuckDuckGo.Region, httpClient, cfg.Lookup.UserAgent)))

	if primary == nil {
		return nil, nil, errors.New("at least one wikipedia edition must be configured")
	}

	srcs, err := registry.ResolveAll(cfg.Lookup.Sources)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve sources: %w", err)
	}
	logger.Info("sources configured", "order", cfg.Lookup.Sources, "primary", primary.Name())
	return srcs, primary, nil
}

func buildAssistant(cfg config.AssistantConfig, logger *slog.Logger) (*usecase.Assistant, *usecase.Janitor, error) {
	if !cfg.Enabled() {
		logger.Info("assistant disabled")
		return nil, nil, nil
	}

	store, err := session.NewStore(session.Policy{
		MaxSessions: cfg.MaxSessions,
		MaxMessages: cfg.MaxMessages,
		TTL:         cfg.SessionTTL,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("session store: %w", err)
	}

	assistant := usecase.NewAssistant(llm.NewChatGPTClient(cfg), store, cfg.SystemPrompt)
	janitor := usecase.NewJanitor(scheduler.NewIntervalScheduler(cfg.SweepInterval), store, logger.With("component", "janitor"))
	return assistant, janitor, nil
}

func progressSteps(steps []config.ProgressStepConfig) []usecase.ProgressStep {
	out := make([]usecase.ProgressStep, 0, len(steps))
	for _, s := range steps {
		out = append(out, usecase.ProgressStep{Text: s.Text, Delay: s.Delay})
	}
	return out
}

// Run polls Telegram until ctx is cancelled, then shuts the admin server and janitor down.
func (a *Application) Run(ctx context.Context) error {
	defer a.close()

	if a.janitor != nil {
		if err := a.janitor.Start(ctx); err != nil {
			return fmt.Errorf("start janitor: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("bot started")
		return a.poller.Run(gctx)
	})

	if a.admin != nil {
		g.Go(func() error {
			a.logger.Info("admin server listening", "addr", a.admin.Addr)
			if err := a.admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("admin server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return a.admin.Shutdown(shutdownCtx)
		})
	}

	err := g.Wait()

	if a.janitor != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if stopErr := a.janitor.Stop(stopCtx); stopErr != nil {
			a.logger.Warn("stop janitor", "error", stopErr)
		}
	}

	a.logger.Info("bot stopped")
	return err
}

func (a *Application) close() {
	if a.repo == nil {
		return
	}
	if err := a.repo.Close(); err != nil {
		a.logger.Warn("close storage", "error", err)
	}
	a.repo = nil
}
