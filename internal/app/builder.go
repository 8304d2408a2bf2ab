package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/pipeline-tracker/internal/aggregator"
	"github.com/stacklok/pipeline-tracker/internal/api"
	"github.com/stacklok/pipeline-tracker/internal/app/storage"
	"github.com/stacklok/pipeline-tracker/internal/catalog"
	"github.com/stacklok/pipeline-tracker/internal/changes"
	"github.com/stacklok/pipeline-tracker/internal/config"
	"github.com/stacklok/pipeline-tracker/internal/filtering"
	"github.com/stacklok/pipeline-tracker/internal/git"
	"github.com/stacklok/pipeline-tracker/internal/httpclient"
	"github.com/stacklok/pipeline-tracker/internal/kubernetes"
	"github.com/stacklok/pipeline-tracker/internal/resolver"
	"github.com/stacklok/pipeline-tracker/internal/service"
	"github.com/stacklok/pipeline-tracker/internal/store"
	pkgsync "github.com/stacklok/pipeline-tracker/internal/sync"
	"github.com/stacklok/pipeline-tracker/internal/sync/coordinator"
	"github.com/stacklok/pipeline-tracker/internal/telemetry"
)

const (
	defaultHTTPAddress    = ":8080"
	defaultRequestTimeout = 10 * time.Second
	defaultReadTimeout    = 10 * time.Second
	defaultWriteTimeout   = 15 * time.Second
	defaultIdleTimeout    = 60 * time.Second

	tracerNamePrefix = "github.com/stacklok/pipeline-tracker/"
)

// PipelineTrackerAppOptions is a function that configures the app builder
type PipelineTrackerAppOptions func(*pipelineTrackerAppConfig) error

// pipelineTrackerAppConfig collects everything needed to build the app.
// Components left nil are built from config.
type pipelineTrackerAppConfig struct {
	config *config.Config

	// Optional component overrides (primarily for testing)
	catalog        catalog.Catalog
	changeSource   changes.Source
	stageResolver  resolver.Resolver
	syncManager    pkgsync.Manager
	storageFactory storage.Factory

	// catalogWatcher is set when a file catalog is watched for changes
	catalogWatcher *catalog.FileWatcher

	// HTTP server options
	address        string
	middlewares    []func(http.Handler) http.Handler
	requestTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration

	// Telemetry components
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	metricsHandler http.Handler
}

func baseConfig(opts ...PipelineTrackerAppOptions) (*pipelineTrackerAppConfig, error) {
	cfg := &pipelineTrackerAppConfig{
		address:        defaultHTTPAddress,
		requestTimeout: defaultRequestTimeout,
		readTimeout:    defaultReadTimeout,
		writeTimeout:   defaultWriteTimeout,
		idleTimeout:    defaultIdleTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	return cfg, nil
}

// NewPipelineTrackerApp builds the app from its configuration
func NewPipelineTrackerApp(
	ctx context.Context,
	opts ...PipelineTrackerAppOptions,
) (*PipelineTrackerApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}

	if cfg.storageFactory == nil {
		var factoryOpts []storage.DatabaseFactoryOption
		if tracer := cfg.tracer("store"); tracer != nil {
			factoryOpts = append(factoryOpts, storage.WithTracer(tracer))
		}
		cfg.storageFactory, err = storage.NewStorageFactory(ctx, cfg.config, factoryOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage factory: %w", err)
		}
	}

	// Ensure cleanup happens on error
	var cleanupNeeded = true
	defer func() {
		if cleanupNeeded && cfg.storageFactory != nil {
			cfg.storageFactory.Cleanup()
		}
	}()

	st, err := cfg.storageFactory.CreateStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	if cfg.catalog == nil {
		cfg.catalog, err = buildCatalog(ctx, cfg.config)
		if err != nil {
			return nil, fmt.Errorf("failed to build catalog: %w", err)
		}
	}

	if cfg.config.Catalog.Watch && cfg.config.Catalog.Type == config.CatalogTypeFile {
		cfg.catalogWatcher = catalog.NewFileWatcher(cfg.config.Catalog.File.Path)
	}

	syncCoordinator, err := buildSyncComponents(ctx, cfg, st)
	if err != nil {
		return nil, fmt.Errorf("failed to build sync components: %w", err)
	}

	queryService := service.New(cfg.catalog, st, service.WithTracer(cfg.tracer("service")))

	httpServer, err := buildHTTPServer(ctx, cfg, queryService)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	appCtx, cancel := context.WithCancel(ctx)

	// Cleanup is now handled by the app
	cleanupNeeded = false

	cancelFunc := func() {
		cfg.storageFactory.Cleanup()
		cancel()
	}

	return &PipelineTrackerApp{
		config: cfg.config,
		components: &AppComponents{
			SyncCoordinator: syncCoordinator,
			QueryService:    queryService,
			Store:           st,
			CatalogWatcher:  cfg.catalogWatcher,
		},
		httpServer: httpServer,
		ctx:        appCtx,
		cancelFunc: cancelFunc,
	}, nil
}

// tracer returns a named tracer, or nil when tracing is not configured
func (b *pipelineTrackerAppConfig) tracer(component string) trace.Tracer {
	if b.tracerProvider == nil {
		return nil
	}
	return b.tracerProvider.Tracer(tracerNamePrefix + component)
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) PipelineTrackerAppOptions {
	return func(cfg *pipelineTrackerAppConfig) error {
		cfg.config = c
		return nil
	}
}

// WithAddress sets the HTTP server address
func WithAddress(addr string) PipelineTrackerAppOptions {
	return func(cfg *pipelineTrackerAppConfig) error {
		if addr == "" {
			return fmt.Errorf("address cannot be empty")
		}

		host, port, found := strings.Cut(addr, ":")
		if !found || port == "" {
			return fmt.Errorf("address is not a valid port: %s", addr)
		}
		if host == "localhost" {
			host = "127.0.0.1"
		}
		if host == "" {
			host = "0.0.0.0"
		}

		if _, err := netip.ParseAddrPort(host + ":" + port); err != nil {
			return fmt.Errorf("address is not a valid port: %w", err)
		}

		cfg.address = addr
		return nil
	}
}

// WithMiddlewares sets custom HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) PipelineTrackerAppOptions {
	return func(cfg *pipelineTrackerAppConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithCatalog allows injecting a custom catalog (for testing)
func WithCatalog(c catalog.Catalog) PipelineTrackerAppOptions {
	return func(cfg *pipelineTrackerAppConfig) error {
		cfg.catalog = c
		return nil
	}
}

// WithChangeSource allows injecting a custom change source (for testing)
func WithChangeSource(src changes.Source) PipelineTrackerAppOptions {
	return func(cfg *pipelineTrackerAppConfig) error {
		cfg.changeSource = src
		return nil
	}
}

// WithResolver allows injecting a custom stage resolver (for testing)
func WithResolver(r resolver.Resolver) PipelineTrackerAppOptions {
	return func(cfg *pipelineTrackerAppConfig) error {
		cfg.stageResolver = r
		return nil
	}
}

// WithStorageFactory allows injecting a custom storage factory (for testing)
func WithStorageFactory(f storage.Factory) PipelineTrackerAppOptions {
	return func(cfg *pipelineTrackerAppConfig) error {
		cfg.storageFactory = f
		return nil
	}
}

// WithSyncManager allows injecting a custom sync manager (for testing)
func WithSyncManager(sm pkgsync.Manager) PipelineTrackerAppOptions {
	return func(cfg *pipelineTrackerAppConfig) error {
		cfg.syncManager = sm
		return nil
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider for HTTP and reconciliation metrics
func WithMeterProvider(mp metric.MeterProvider) PipelineTrackerAppOptions {
	return func(cfg *pipelineTrackerAppConfig) error {
		cfg.meterProvider = mp
		return nil
	}
}

// WithTelemetry wires the providers and the Prometheus handler of tel
func WithTelemetry(tel *telemetry.Telemetry) PipelineTrackerAppOptions {
	return func(cfg *pipelineTrackerAppConfig) error {
		if tel == nil {
			return fmt.Errorf("telemetry cannot be nil")
		}
		cfg.meterProvider = tel.MeterProvider()
		cfg.tracerProvider = tel.TracerProvider()
		cfg.metricsHandler = tel.MetricsHandler()
		return nil
	}
}

// buildCatalog creates the entity catalog selected by the configuration
func buildCatalog(ctx context.Context, cfg *config.Config) (catalog.Catalog, error) {
	slog.Info("Initializing catalog", "type", cfg.Catalog.Type)

	switch cfg.Catalog.Type {
	case config.CatalogTypeFile:
		return catalog.NewFileCatalog(cfg.Catalog.File.Path)
	case config.CatalogTypeAPI:
		client := httpclient.NewDefaultClient(config.ParseTimeout(cfg.Catalog.API.Timeout))
		return catalog.NewAPICatalog(cfg.Catalog.API.BaseURL, client)
	case config.CatalogTypeKubernetes:
		var opts []kubernetes.Option
		var selector string
		if k := cfg.Catalog.Kubernetes; k != nil {
			selector = k.LabelSelector
			if k.Namespace != "" {
				opts = append(opts, kubernetes.WithNamespace(k.Namespace))
			}
		}
		opts = append(opts, kubernetes.WithCurrentNamespace())
		c, err := kubernetes.NewCatalogClient(ctx, opts...)
		if err != nil {
			return nil, err
		}
		return catalog.NewKubernetesCatalog(c, c.Namespace, selector)
	case config.CatalogTypeGit:
		return buildGitCatalog(cfg.Catalog.Git)
	default:
		return nil, fmt.Errorf("unknown catalog type: %s", cfg.Catalog.Type)
	}
}

// buildGitCatalog creates a catalog over an entities file kept in a git repository
func buildGitCatalog(g *config.GitCatalogConfig) (catalog.Catalog, error) {
	clone := git.CloneConfig{
		URL:    g.Repository,
		Branch: g.Branch,
		Tag:    g.Tag,
		Commit: g.Commit,
	}
	if g.Username != "" {
		password, err := g.GetPassword()
		if err != nil {
			return nil, err
		}
		clone.Auth = &git.AuthConfig{Username: g.Username, Password: password}
	}
	return catalog.NewGitCatalog(git.NewDefaultGitClient(), clone, g.Path,
		catalog.WithRefreshInterval(g.GetRefreshInterval()))
}

// buildChangeSource creates the change source selected by the configuration
func buildChangeSource(cfg *config.Config) (changes.Source, error) {
	src := cfg.ChangeSource
	slog.Info("Initializing change source", "type", src.Type)

	switch src.Type {
	case config.ChangeSourceTypeGerrit:
		client := httpclient.NewDefaultClient(config.ParseTimeout(src.Gerrit.Timeout))
		return changes.NewGerritSource(src.Gerrit.BaseURL, client)
	case config.ChangeSourceTypeGitLab:
		token, err := src.GitLab.GetToken()
		if err != nil {
			return nil, err
		}
		return changes.NewGitLabSource(src.GitLab.BaseURL, token)
	case config.ChangeSourceTypeStatic:
		if src.Static == nil || len(src.Static.Changes) == 0 {
			return changes.NewStaticSource(changes.DemoChanges()), nil
		}
		return changes.NewStaticSource(src.Static.Changes), nil
	default:
		return nil, fmt.Errorf("unknown change source type: %s", src.Type)
	}
}

// buildSyncComponents builds the sync manager and the coordinator that drives it
func buildSyncComponents(
	_ context.Context,
	b *pipelineTrackerAppConfig,
	st store.Store,
) (coordinator.Coordinator, error) {
	slog.Info("Initializing sync components")

	var reconcileMetrics *telemetry.ReconcileMetrics
	if b.meterProvider != nil {
		var err error
		reconcileMetrics, err = telemetry.NewReconcileMetrics(b.meterProvider)
		if err != nil {
			return nil, fmt.Errorf("failed to create reconcile metrics: %w", err)
		}
	}

	if b.syncManager == nil {
		manager, err := buildSyncManager(b, st, reconcileMetrics)
		if err != nil {
			return nil, err
		}
		b.syncManager = manager
	}

	var coordOpts []coordinator.Option
	if reconcileMetrics != nil {
		coordOpts = append(coordOpts, coordinator.WithReconcileMetrics(reconcileMetrics))
		slog.Info("Reconcile metrics enabled")
	}
	if tracer := b.tracer("sync"); tracer != nil {
		coordOpts = append(coordOpts, coordinator.WithTracer(tracer))
	}
	if b.catalogWatcher != nil {
		coordOpts = append(coordOpts, coordinator.WithWakeups(b.catalogWatcher.Changed()))
		slog.Info("Catalog file changes trigger early reconciliation")
	}

	syncCoordinator := coordinator.New(b.syncManager, b.config, coordOpts...)
	slog.Info("Sync components initialized successfully",
		"interval", b.config.GetReconcileInterval(),
		"timeout", b.config.GetReconcileTimeout(),
	)

	return syncCoordinator, nil
}

func buildSyncManager(
	b *pipelineTrackerAppConfig,
	st store.Store,
	reconcileMetrics *telemetry.ReconcileMetrics,
) (pkgsync.Manager, error) {
	if b.changeSource == nil {
		src, err := buildChangeSource(b.config)
		if err != nil {
			return nil, fmt.Errorf("failed to build change source: %w", err)
		}
		b.changeSource = src
	}

	if b.stageResolver == nil {
		registry, err := resolver.NewRegistryFromConfig(b.config.Resolvers)
		if err != nil {
			return nil, fmt.Errorf("failed to build stage resolvers: %w", err)
		}
		b.stageResolver = registry
	}

	aggOpts := []aggregator.Option{aggregator.WithTracer(b.tracer("aggregator"))}
	if reconcileMetrics != nil {
		aggOpts = append(aggOpts, aggregator.WithMetrics(reconcileMetrics))
	}
	agg := aggregator.New(b.stageResolver, aggOpts...)

	managerOpts := []pkgsync.Option{
		pkgsync.WithConcurrency(b.config.GetReconcileConcurrency()),
		pkgsync.WithTracer(b.tracer("sync")),
	}
	if b.config.PruneEnabled() {
		pruner, ok := st.(store.Pruner)
		if !ok {
			return nil, fmt.Errorf("pruning is enabled but the %s store cannot prune", b.config.GetStorageType())
		}
		managerOpts = append(managerOpts, pkgsync.WithPruner(pruner))
		slog.Info("Pruning of closed changes enabled")
	}
	if projects := b.config.GetProjectFilter(); projects != nil {
		filter, err := filtering.NewProjectFilter(projects)
		if err != nil {
			return nil, fmt.Errorf("failed to build project filter: %w", err)
		}
		managerOpts = append(managerOpts, pkgsync.WithProjectFilter(filter))
	}
	if b.meterProvider != nil {
		changeMetrics, err := telemetry.NewChangeMetrics(b.meterProvider)
		if err != nil {
			return nil, fmt.Errorf("failed to create change metrics: %w", err)
		}
		managerOpts = append(managerOpts, pkgsync.WithChangeMetrics(changeMetrics))
	}

	return pkgsync.NewManager(b.catalog, b.changeSource, agg, st, managerOpts...), nil
}

// buildHTTPServer builds the HTTP server with router and middleware
//
//nolint:unparam // we prefer having a similar interface
func buildHTTPServer(
	_ context.Context,
	b *pipelineTrackerAppConfig,
	svc service.QueryService,
) (*http.Server, error) {
	slog.Info("Initializing HTTP server")

	if b.middlewares == nil {
		b.middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(b.requestTimeout),
			api.LoggingMiddleware,
		}
	}

	// Instrumentation wraps everything so log records carry the span
	instrument, err := telemetry.HTTPMiddleware(b.tracerProvider, b.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP instrumentation: %w", err)
	}
	b.middlewares = append([]func(http.Handler) http.Handler{instrument}, b.middlewares...)

	router := api.NewServer(svc,
		api.WithMiddlewares(b.middlewares...),
		api.WithMetricsHandler(b.metricsHandler),
	)

	server := &http.Server{
		Addr:         b.address,
		Handler:      router,
		ReadTimeout:  b.readTimeout,
		WriteTimeout: b.writeTimeout,
		IdleTimeout:  b.idleTimeout,
	}

	slog.Info("HTTP server configured", "address", b.address)
	return server, nil
}
