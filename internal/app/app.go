package app

import (
	"context"
	"net/http"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"github.com/riskibarqy/prediction-league/internal/config"
	"github.com/riskibarqy/prediction-league/internal/domain/bet"
	"github.com/riskibarqy/prediction-league/internal/domain/betresult"
	"github.com/riskibarqy/prediction-league/internal/domain/bot"
	"github.com/riskibarqy/prediction-league/internal/domain/jobscheduler"
	"github.com/riskibarqy/prediction-league/internal/domain/league"
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/signal"
	"github.com/riskibarqy/prediction-league/internal/domain/standing"
	"github.com/riskibarqy/prediction-league/internal/domain/user"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/account"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/footballdata"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/jobqueue"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/learning"
	cacherepo "github.com/riskibarqy/prediction-league/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/prediction-league/internal/interfaces/httpapi"
	"github.com/riskibarqy/prediction-league/internal/platform/cache"
	"github.com/riskibarqy/prediction-league/internal/platform/id"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/prediction"
	"github.com/riskibarqy/prediction-league/internal/usecase"
	"github.com/riskibarqy/prediction-league/internal/worker"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const signalHealthCacheTTL = time.Minute

// App owns the HTTP server and the background runners built from config.
type App struct {
	Server *http.Server

	BotLoop       *worker.BotLoop
	JobSubscriber *jobqueue.NATSSubscriber

	logger  *logging.Logger
	closers []func(context.Context) error
}

type repositories struct {
	leagues   league.Repository
	matches   match.Repository
	bets      bet.Repository
	results   betresult.Repository
	standings standing.Repository
	users     user.Repository
	bots      bot.Repository
	dispatch  jobscheduler.Repository
}

// New wires the application. The clock is injectable so the whole graph
// can run against a fake clock in tests; nil means the wall clock.
func New(ctx context.Context, cfg config.Config, clock clockwork.Clock, logger *logging.Logger) (*App, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return nil, crerr.New("http server addr cannot be empty")
	}

	a := &App{logger: logger.Named("app")}
	ok := false
	defer func() {
		if !ok {
			_ = a.Close(context.Background())
		}
	}()

	repos, err := a.buildRepositories(ctx, cfg, clock)
	if err != nil {
		return nil, err
	}
	if cfg.CacheEnabled {
		repos.leagues = cacherepo.NewLeagueRepository(repos.leagues, cache.NewStoreWithClock(cfg.CacheTTL, clock))
	}

	registry := prediction.NewRegistry(prediction.Dependencies{
		Context: prediction.NewContextBuilder(
			a.buildSignalProviders(cfg, clock),
			prediction.ContextBuilderConfig{FormLookbackMatches: cfg.FormLookbackMatches},
			logger.Named("prediction"),
		),
		Learning: buildLearningService(cfg, logger),
		Profiles: a.loadProfiles(cfg),
		Logger:   logger.Named("prediction"),
	})

	// handlers are registered once the job service exists.
	dispatcher := jobqueue.NewDispatcher(nil, logger)
	queue, err := a.buildJobQueue(ctx, cfg, dispatcher, clock, logger)
	if err != nil {
		return nil, err
	}
	jobs := usecase.NewJobDispatcher(queue, repos.dispatch, clock, logger.Named("dispatch"))

	betSvc := usecase.NewBetService(repos.leagues, repos.matches, repos.bets, repos.results, id.NewUUIDGenerator(), clock, logger.Named("bets"))
	resultSvc := usecase.NewResultService(repos.leagues, repos.matches, repos.bets, repos.results, jobs, clock, logger.Named("results"))
	standingSvc := usecase.NewStandingService(
		repos.leagues,
		repos.results,
		repos.standings,
		repos.users,
		usecase.StandingServiceConfig{Workers: cfg.StandingsWorkers},
		clock,
		logger.Named("standings"),
	)
	botSvc := usecase.NewBotSchedulerService(
		repos.leagues,
		repos.bots,
		repos.matches,
		repos.bets,
		registry,
		betSvc,
		usecase.BotSchedulerConfig{LookAhead: cfg.BotSchedulerLookAhead},
		clock,
		logger.Named("bots"),
	)
	jobSvc := usecase.NewJobService(resultSvc, standingSvc, botSvc, jobs, logger.Named("jobs"))
	dispatcher.Register(jobSvc.Handlers())

	if cfg.BotSchedulerEnabled {
		a.BotLoop = worker.NewBotLoop(botSvc, worker.BotLoopConfig{
			InitialDelay:       cfg.BotSchedulerInitialDelay,
			Interval:           cfg.BotSchedulerInterval,
			MatchHoursInterval: cfg.BotSchedulerMatchInterval,
			MatchHoursStart:    cfg.BotSchedulerMatchStartHour,
			MatchHoursEnd:      cfg.BotSchedulerMatchEndHour,
		}, clock, logger.Named("botloop"))
	}

	verifier := account.NewClient(account.ClientConfig{
		BaseURL:        cfg.AccountBaseURL,
		IntrospectPath: cfg.AccountIntrospectPath,
		AdminKey:       cfg.AccountAdminKey,
		Timeout:        cfg.AccountTimeout,
		CacheTTL:       cfg.AccountCacheTTL,
		CircuitBreaker: cfg.AccountCircuit,
		Clock:          clock,
		Logger:         logger,
	})

	handler := httpapi.NewHandler(betSvc, standingSvc, jobSvc, logger.Named("http"))
	router := httpapi.NewRouter(handler, verifier, logger, httpapi.RouterConfig{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
	})

	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ok = true
	return a, nil
}

// Close releases resources in reverse construction order.
func (a *App) Close(ctx context.Context) error {
	var errs error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = crerr.CombineErrors(errs, err)
		}
	}
	a.closers = nil
	return errs
}

func (a *App) onClose(fn func(context.Context) error) {
	a.closers = append(a.closers, fn)
}

func (a *App) buildRepositories(ctx context.Context, cfg config.Config, clock clockwork.Clock) (repositories, error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := openDB(ctx, cfg)
		if err != nil {
			return repositories{}, err
		}
		a.onClose(func(context.Context) error { return db.Close() })

		if cfg.DBSeedOnStart {
			if err := postgres.BootstrapSeed(ctx, db, clock.Now()); err != nil {
				return repositories{}, crerr.Wrap(err, "seed database")
			}
			a.logger.InfoContext(ctx, "database seeded")
		}

		return repositories{
			leagues:   postgres.NewLeagueRepository(db),
			matches:   postgres.NewMatchRepository(db),
			bets:      postgres.NewBetRepository(db),
			results:   postgres.NewBetResultRepository(db),
			standings: postgres.NewStandingRepository(db),
			users:     postgres.NewUserRepository(db),
			bots:      postgres.NewBotRepository(db),
			dispatch:  postgres.NewJobDispatchRepository(db),
		}, nil
	default:
		now := clock.Now()
		a.logger.InfoContext(ctx, "using in-memory storage with seed data")
		results := memory.NewBetResultRepository()
		return repositories{
			leagues:   memory.NewLeagueRepository(memory.SeedLeagues(now), memory.SeedMembers(now)),
			matches:   memory.NewMatchRepository(memory.SeedMatches(now)),
			bets:      memory.NewBetRepository(),
			results:   results,
			standings: memory.NewStandingRepository(results),
			users:     memory.NewUserRepository(memory.SeedUserIDs()),
			bots:      memory.NewBotRepository(memory.SeedBots()),
			dispatch:  memory.NewJobDispatchRepository(),
		}, nil
	}
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	attrs := []otelsql.Option{
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	}
	if name := dbNameFromURL(cfg.DBURL); name != "" {
		attrs = append(attrs, otelsql.WithDBName(name))
	}

	db, err := otelsqlx.Open("postgres", normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary), attrs...)
	if err != nil {
		return nil, crerr.Wrap(err, "open database")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, crerr.Wrap(err, "ping database")
	}
	return db, nil
}

func (a *App) buildSignalProviders(cfg config.Config, clock clockwork.Clock) signal.Providers {
	var providers signal.Providers
	if strings.TrimSpace(cfg.StatsProviderBaseURL) != "" {
		client := footballdata.NewClient(footballdata.ClientConfig{
			BaseURL:        cfg.StatsProviderBaseURL,
			Token:          cfg.StatsProviderToken,
			Timeout:        cfg.StatsProviderTimeout,
			MinInterval:    cfg.StatsProviderMinInterval,
			MaxRetries:     cfg.StatsProviderMaxRetries,
			CircuitBreaker: cfg.StatsProviderCircuit,
			Clock:          clock,
			Logger:         a.logger,
		})
		providers = client.Providers()
	} else {
		store := memory.NewSignalStore()
		memory.SeedSignals(store, clock.Now())
		providers = store.Providers()
	}

	if cfg.StatsProviderCacheTTL <= 0 {
		return providers
	}
	return cacherepo.NewSignalProviders(
		providers,
		cache.NewStoreWithClock(cfg.StatsProviderCacheTTL, clock),
		cache.NewStoreWithClock(signalHealthCacheTTL, clock),
	).Providers()
}

func buildLearningService(cfg config.Config, logger *logging.Logger) prediction.LearningService {
	if strings.TrimSpace(cfg.MLServiceBaseURL) == "" {
		return nil
	}
	return learning.NewClient(cfg.MLServiceBaseURL, cfg.MLServiceTimeout, logger)
}

func (a *App) loadProfiles(cfg config.Config) *prediction.ProfileSet {
	if strings.TrimSpace(cfg.EnsembleProfilesPath) == "" {
		return prediction.DefaultProfileSet()
	}
	profiles, err := prediction.LoadProfiles(cfg.EnsembleProfilesPath)
	if err != nil {
		a.logger.Warn("ensemble profiles unreadable, using defaults", "path", cfg.EnsembleProfilesPath, "error", err)
		return prediction.DefaultProfileSet()
	}
	return profiles
}

func (a *App) buildJobQueue(
	ctx context.Context,
	cfg config.Config,
	dispatcher *jobqueue.Dispatcher,
	clock clockwork.Clock,
	logger *logging.Logger,
) (usecase.JobQueue, error) {
	switch cfg.JobQueueDriver {
	case config.QueueQStash:
		return jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
			BaseURL:          cfg.QStashBaseURL,
			Token:            cfg.QStashToken,
			TargetBaseURL:    cfg.QStashTargetBaseURL,
			Retries:          cfg.QStashRetries,
			InternalJobToken: cfg.InternalJobToken,
			CircuitBreaker:   cfg.QStashCircuit,
		}, clock, logger), nil
	case config.QueueNATS:
		natsCfg := jobqueue.DefaultNATSConfig()
		natsCfg.URL = cfg.NATSURL
		natsCfg.StreamName = cfg.NATSStreamName
		natsCfg.SubjectPrefix = cfg.NATSSubjectPrefix
		natsCfg.ConsumerName = cfg.NATSConsumerName
		natsCfg.MaxDeliver = cfg.NATSMaxDeliver
		natsCfg.RetryDelay = cfg.NATSRetryDelay

		conn, js, err := jobqueue.ConnectNATS(ctx, natsCfg, logger)
		if err != nil {
			return nil, err
		}
		a.onClose(func(context.Context) error { return drainNATS(conn) })
		a.JobSubscriber = jobqueue.NewNATSSubscriber(js, dispatcher, natsCfg, clock, logger)
		return jobqueue.NewNATSPublisher(js, natsCfg, clock, logger), nil
	default:
		local, err := jobqueue.NewLocalQueue(dispatcher, jobqueue.LocalQueueConfig{Workers: cfg.LocalQueueWorkers}, clock, logger)
		if err != nil {
			return nil, err
		}
		a.onClose(local.Close)
		return local, nil
	}
}

func drainNATS(conn *nats.Conn) error {
	if conn == nil || conn.IsClosed() {
		return nil
	}
	return conn.Drain()
}
