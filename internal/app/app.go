package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"ContentCurator/internal/config"
	"ContentCurator/internal/domain"
	"ContentCurator/internal/enrich"
	"ContentCurator/internal/generation"
	"ContentCurator/internal/infrastructure/artifacts"
	"ContentCurator/internal/infrastructure/calendar"
	"ContentCurator/internal/infrastructure/feed"
	"ContentCurator/internal/infrastructure/fetcher"
	"ContentCurator/internal/infrastructure/llm"
	"ContentCurator/internal/infrastructure/scheduler"
	"ContentCurator/internal/infrastructure/search"
	"ContentCurator/internal/infrastructure/storage"
	"ContentCurator/internal/infrastructure/telegram"
	"ContentCurator/internal/logging"
	"ContentCurator/internal/ports"
	"ContentCurator/internal/query"
	"ContentCurator/internal/social"
	"ContentCurator/internal/source"
	"ContentCurator/internal/usecase"
	"ContentCurator/internal/workflow"
)

const (
	requestTimeout  = 20 * time.Second
	calendarTimeout = 30 * time.Second

	socialPrompt = "You monitor the social media accounts listed in the input. " +
		"Return JSON with a \"social_media_report\" object holding a \"posts\" list " +
		"(platform, account_url, post_url, content, timestamp, engagement) and a short \"analysis\" of the main themes."
	generationPrompt = "You write publishable content for the brand described in the input, " +
		"using only the gathered news and posts provided. Return JSON with a \"generated_content\" Markdown string."
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg        config.Config
	logger     *slog.Logger
	discovery  *usecase.Discovery
	watcher    *social.Watcher
	generator  *generation.Generator
	packager   *generation.Packager
	artifacts  *artifacts.Store
	repository *storage.Repository
	scheduler  *usecase.Scheduler
}

// New builds the application. The run-history store is opened only when a
// DSN is configured.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	httpClient := &http.Client{Timeout: requestTimeout}

	var repository *storage.Repository
	var recordRepo ports.RecordRepository
	if cfg.Database.DSN != "" {
		repo, err := storage.Open(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open run history: %w", err)
		}
		repository = repo
		recordRepo = repo
	}

	var conventions []ports.SearchConvention
	if cfg.Search.Endpoint != "" {
		conventions = search.Conventions(search.Settings{
			Endpoint: cfg.Search.Endpoint,
			APIKey:   cfg.Search.APIKey,
			EngineID: cfg.Search.EngineID,
		}, httpClient)
	}
	feedSource := feed.NewSource(cfg.Search.FeedTemplate, cfg.News.Language, httpClient)
	searcher := source.NewClient(conventions, feedSource, baseLogger.With("component", "source"))

	discovery := usecase.NewDiscovery(usecase.DiscoveryDeps{
		Planner:    query.NewPlanner(cfg.News.SourceDomains, cfg.News.ResourceLinks),
		Searcher:   searcher,
		Calendar:   calendar.NewCrawler(calendarTimeout, baseLogger.With("component", "calendar")),
		Enricher:   enrich.New(fetcher.New(httpClient), enrich.DefaultTextLimit, baseLogger.With("component", "enrich")),
		Repository: recordRepo,
		Logger:     baseLogger.With("component", "discovery"),
	})

	llmSettings := func(prompt string) llm.Settings {
		return llm.Settings{
			Endpoint:     cfg.LLM.Endpoint,
			Model:        cfg.LLM.Model,
			APIKey:       cfg.LLM.APIKey,
			SystemPrompt: prompt,
		}
	}

	watcher := social.NewWatcher(
		llm.NewChatAgent("social_media_monitor", llmSettings(socialPrompt), llm.WithResultKeys("social_media_report")),
		social.Settings{
			Accounts:           cfg.Social.Accounts,
			Keywords:           cfg.Social.Keywords,
			MaxPostsPerAccount: cfg.Social.MaxPostsPerAccount,
			LookbackDays:       cfg.Social.LookbackDays,
			PriorityCategories: cfg.Social.PriorityCategories,
		},
		baseLogger.With("component", "social"),
	)

	generator := generation.NewGenerator(
		llm.NewChatAgent("content_generator", llmSettings(generationPrompt)),
		generation.Settings{
			Brand: generation.Brand{
				Name:     cfg.Generation.BrandName,
				Tagline:  cfg.Generation.BrandTagline,
				Voice:    cfg.Generation.BrandVoice,
				Audience: cfg.Generation.TargetAudience,
			},
			ContentType:    cfg.Generation.DefaultContentType,
			SummaryLength:  cfg.Generation.SummaryLength,
			BlogPostLength: cfg.Generation.BlogPostLength,
			IncludeSEO:     cfg.Generation.IncludeSEO,
			IncludeCTA:     cfg.Generation.IncludeCTA,
		},
		baseLogger.With("component", "generation"),
	)

	store := artifacts.NewStore(artifacts.Dirs{
		Output:  cfg.Paths.Output,
		Content: cfg.Paths.Content,
		Logs:    cfg.Paths.Logs,
	})

	var notifier ports.Notifier
	if tg := telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID); tg.Configured() {
		notifier = tg
	}

	application := &Application{
		cfg:        cfg,
		logger:     baseLogger,
		discovery:  discovery,
		watcher:    watcher,
		generator:  generator,
		packager:   generation.NewPackager(store, recordRepo, notifier, baseLogger.With("component", "packager")),
		artifacts:  store,
		repository: repository,
	}
	application.scheduler = usecase.NewScheduler(
		scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location(), baseLogger.With("component", "cron")),
		application,
		baseLogger.With("component", "scheduler"),
	)
	return application, nil
}

// DiscoveryRequest derives the discovery settings from configuration.
func (a *Application) DiscoveryRequest() usecase.DiscoveryRequest {
	news := a.cfg.News
	return usecase.DiscoveryRequest{
		Keywords:       news.Keywords,
		CountryCode:    news.CountryFocus,
		DaysBack:       news.DaysBack,
		MaxResults:     news.MaxResults,
		EventCalendars: news.EventCalendars,
		SkipKnownURLs:  news.SkipKnownURLs,
		SearchWorkers:  news.SearchWorkers,
		EnrichWorkers:  news.EnrichWorkers,
	}
}

// Gather runs only the discovery pipeline.
func (a *Application) Gather(ctx context.Context) ([]domain.ContentRecord, error) {
	return a.discovery.Gather(ctx, a.DiscoveryRequest())
}

// Run executes the full workflow once.
func (a *Application) Run(ctx context.Context) (workflow.Result, error) {
	req := a.DiscoveryRequest()
	wf, err := workflow.New(workflow.Deps{
		News: func(ctx context.Context) ([]domain.ContentRecord, error) {
			return a.discovery.Gather(ctx, req)
		},
		Social:     a.watcher,
		Generator:  a.generator,
		Packager:   a.packager,
		Artifacts:  a.artifacts,
		Repository: a.runRepository(),
		Policy: workflow.Policy{
			MaxRetries:              a.cfg.Workflow.MaxRetries,
			BaseDelay:               a.cfg.Workflow.RetryDelay(),
			ContinueOnFailure:       a.cfg.Workflow.ContinueOnFailure,
			SaveIntermediateResults: a.cfg.Workflow.SaveIntermediateResults,
		},
		Logger: a.logger.With("component", "workflow"),
	})
	if err != nil {
		return workflow.Result{}, err
	}
	return wf.Run(ctx)
}

// RunOnce runs the workflow and reports only whether it was halted.
func (a *Application) RunOnce(ctx context.Context) error {
	_, err := a.Run(ctx)
	return err
}

// Schedule runs the workflow on the configured cron expression until ctx ends.
func (a *Application) Schedule(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return err
	}
	a.logger.Info("scheduler started",
		"cron", a.cfg.Scheduler.CronExpression,
		"timezone", a.cfg.Scheduler.Location().String(),
	)
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	return a.scheduler.Stop(stopCtx)
}

// Close releases the run-history store.
func (a *Application) Close() error {
	if a.repository == nil {
		return nil
	}
	return a.repository.Close()
}

func (a *Application) runRepository() ports.RecordRepository {
	if a.repository == nil {
		return nil
	}
	return a.repository
}
