package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"webgu/cache"
	"webgu/config"
	"webgu/document"
	"webgu/fetcher"
	"webgu/html"
	"webgu/logging"
	"webgu/pipeline"
	"webgu/security"
	"webgu/theme"
)

// app holds the components shared by every pipeline of one process.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	registry  *prometheus.Registry
	metrics   *pipeline.Metrics
	http      *fetcher.HTTP
	fetcher   fetcher.Fetcher
	scanner   *html.Scanner
	projector *document.Projector
	cache     cache.Cache
	policy    *security.Policy
	closers   []func() error
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if devLogs {
		cfg.Log.Development = true
	}
	return cfg, nil
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
		policy:   security.NewPolicy(cfg.Security),
		scanner:  html.NewScanner(cfg.ScannerOptions()),
	}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = pipeline.NewMetrics(a.registry)

	a.http = fetcher.NewHTTP(cfg.FetcherOptions(), logger.Named("fetcher"))
	switch cfg.Fetcher.Browser {
	case config.BrowserAlways:
		a.fetcher = fetcher.NewBrowser(cfg.FetcherOptions(), logger.Named("browser"))
	case config.BrowserFallback:
		a.fetcher = &fetcher.Fallback{
			Primary:   a.http,
			Secondary: fetcher.NewBrowser(cfg.FetcherOptions(), logger.Named("browser")),
			Logger:    logger.Named("fetcher"),
		}
	default:
		a.fetcher = a.http
	}

	projOpts := []document.Option{document.WithLogger(logger.Named("document"))}
	if cfg.Render.Images {
		projOpts = append(projOpts, document.WithImageFetcher(a.http))
	}
	a.projector = document.NewProjector(cfg.ProjectorOptions(), theme.NewResolver(cfg.Style), projOpts...)

	switch cfg.Cache.Backend {
	case config.CacheRedis:
		r, err := cache.DialRedis(ctx, cfg.Cache.RedisAddr, cfg.RedisOptions())
		if err != nil {
			return nil, err
		}
		a.cache = r
		a.closers = append(a.closers, r.Close)
	case config.CacheMemory:
		a.cache = cache.NewMemory(cfg.Cache.Capacity)
	}

	logger.Debug("webgu configured",
		zap.String("browser", cfg.Fetcher.Browser),
		zap.String("cache", cfg.Cache.Backend),
		zap.Bool("sanitize", a.policy.Sanitizes()),
		zap.Int("max_elements", cfg.Scanner.MaxElements),
		zap.Int("max_nodes", cfg.Render.MaxNodes),
	)
	return a, nil
}

// newPipeline builds a pipeline over the shared components.
func (a *app) newPipeline(shell pipeline.Shell) *pipeline.Pipeline {
	opts := []pipeline.Option{
		pipeline.WithScanner(a.scanner),
		pipeline.WithProjector(a.projector),
		pipeline.WithCache(a.cache),
		pipeline.WithPolicy(a.policy),
		pipeline.WithLogger(a.logger.Named("pipeline")),
		pipeline.WithMetrics(a.metrics),
		pipeline.WithPollInterval(a.cfg.Pipeline.PollInterval),
	}
	if a.cfg.Pipeline.Blocking {
		opts = append(opts, pipeline.WithBlockingFetch())
	}
	return pipeline.New(a.fetcher, shell, opts...)
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn("closing", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
