package app

import (
	"fmt"
	"net/http"

	"github.com/leagueops/league-rankings/external/resultsfeed"
	"github.com/leagueops/league-rankings/internal/config"
	"github.com/leagueops/league-rankings/internal/domain/standing"
	"github.com/leagueops/league-rankings/internal/infrastructure/repository/memory"
	"github.com/leagueops/league-rankings/internal/infrastructure/repository/postgres"
	"github.com/leagueops/league-rankings/internal/interfaces/httpapi"
	"github.com/leagueops/league-rankings/internal/platform/cache"
	idgen "github.com/leagueops/league-rankings/internal/platform/id"
	"github.com/leagueops/league-rankings/internal/platform/logging"
	"github.com/leagueops/league-rankings/internal/platform/resilience"
	"github.com/leagueops/league-rankings/internal/usecase"
	"github.com/valyala/fasthttp"
)

func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, error) {
	if logger == nil {
		logger = logging.Default()
	}

	rules := standing.Rules{
		WinPoints:  cfg.WinPoints,
		DrawPoints: cfg.DrawPoints,
		TopN:       cfg.TopN,
	}

	var standingRepo standing.Repository
	if cfg.DBEnabled {
		db, err := openDB(cfg)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		standingRepo = postgres.NewStandingRepository(db)
		logger.Info("standings repository ready", "backend", "postgres", "db_name", dbNameFromURL(cfg.DBURL))
	} else {
		standingRepo = memory.NewStandingRepository()
		logger.Info("standings repository ready", "backend", "memory")
	}

	standingsSvc := usecase.NewStandingsService(rules, standingRepo)
	replaySvc := usecase.NewReplayService(rules, idgen.NewRandomGenerator())

	var feed httpapi.ResultsFeed
	if cfg.FeedEnabled {
		feed = resultsfeed.NewClient(resultsfeed.ClientConfig{
			HTTPClient: &fasthttp.Client{},
			BaseURL:    cfg.FeedBaseURL,
			Timeout:    cfg.FeedTimeout,
			MaxRetries: cfg.FeedMaxRetries,
			Logger:     logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.FeedCircuitEnabled,
				FailureThreshold: cfg.FeedCircuitFailureCount,
				OpenTimeout:      cfg.FeedCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.FeedCircuitHalfOpenMaxReq,
			},
		})
	}

	var store *cache.Store
	if cfg.CacheEnabled {
		store = cache.NewStore(cfg.CacheTTL)
	}

	handler := httpapi.NewHandler(standingsSvc, replaySvc, feed, store, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}
