package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"trivia-game-service/internal/app"
	"trivia-game-service/internal/config"
	"trivia-game-service/internal/domain"
	"trivia-game-service/internal/infra/memory"
	"trivia-game-service/internal/infra/postgres"
	redisinfra "trivia-game-service/internal/infra/redis"
	"trivia-game-service/internal/sources"
	"trivia-game-service/internal/telemetry"
	transport "trivia-game-service/internal/transport/http"
	"trivia-game-service/internal/transport/twitchirc"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trivia game service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// logAwardSink is the default payout path when no points backend is
// configured. The ledger remains the score authority; this just makes
// every payout visible in the service log.
type logAwardSink struct {
	log *zap.SugaredLogger
}

func (s logAwardSink) AwardPoints(_ context.Context, channel, userID string, amount int) error {
	s.log.Infow("points awarded", "channel", channel, "userId", userID, "amount", amount)
	return nil
}

// banAdmin is satisfied by every ban store implementation we wire.
type banAdmin interface {
	app.BanStore
	Ban(ctx context.Context, questionID, source string) error
	Unban(ctx context.Context, questionID, source string) error
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()
	log := logger.Sugar()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		// Misconfiguration is fatal at startup, never per-request.
		return err
	}

	telemetry.Init()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *goredis.Client
	if cfg.Redis.Addr != "" {
		redisClient = goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	lookback := config.TTLDuration(cfg.Trivia.HistoryLookback, 24*time.Hour)

	var bans banAdmin = memory.NewBanStore()
	if pool != nil {
		banRepo := postgres.NewBanRepository(pool)
		if redisClient != nil {
			banTTL := config.TTLDuration(cfg.Redis.BanTTL, time.Hour)
			bans = redisinfra.NewBanCache(redisClient, banRepo, banTTL)
		} else {
			bans = banRepo
		}
	}

	var history app.HistoryStore = memory.NewHistoryStore(lookback)
	if redisClient != nil {
		history = redisinfra.NewHistoryStore(redisClient, lookback)
	}

	var ledger app.ScoreLedger = memory.NewScoreLedger()
	if pool != nil {
		ledger = postgres.NewScoreLedger(pool)
	}

	registry := sources.NewRegistry()
	for _, src := range cfg.Sources {
		weight := src.Weight
		if weight == 0 {
			weight = 1
		}
		registry.Register(sources.NewHTTPSource(src.Name, src.URL), weight)
	}
	if registry.Len() == 0 {
		log.Info("no question sources configured, falling back to built-in demo pool")
		registry.Register(sources.NewStaticSource("builtin", demoQuestions()), 1)
	}

	health := app.NewSourceHealthTracker(
		cfg.Trivia.SourceFailThreshold,
		config.TTLDuration(cfg.Trivia.SourceFailWindow, 10*time.Minute),
	)
	pipeline := app.NewSourcingPipeline(
		registry,
		health,
		bans,
		history,
		app.NewContentFilter(cfg.Trivia.BannedTerms),
		cfg.Trivia.MaxSourcingAttempts,
		log,
	)
	roller := app.NewSpecialRoller(
		cfg.Trivia.ShinyProbability,
		cfg.Trivia.ToxicProbability,
		cfg.Trivia.ShinyCap,
		config.TTLDuration(cfg.Trivia.ShinyWindow, 12*time.Hour),
	)
	cooldowns := app.NewCooldownGuard(config.TTLDuration(cfg.Trivia.SuperCooldown, 2*time.Minute))
	store := app.NewGameStore(cfg.Trivia.SuperQueueCap)

	machine := app.NewGameMachine(
		app.MachineConfig{
			DefaultAward:    cfg.Trivia.DefaultAward,
			DefaultTTL:      config.TTLDuration(cfg.Trivia.DefaultTTL, 30*time.Second),
			ShinyMultiplier: cfg.Trivia.ShinyMultiplier,
		},
		store,
		pipeline,
		roller,
		cooldowns,
		app.NewEmoteCycler(cfg.Trivia.Emotes),
		ledger,
		logAwardSink{log: log},
		log,
	)
	machine.Start(ctx)
	defer machine.Stop()

	wsHandler := transport.NewWSHandler(machine, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	group, groupCtx := errgroup.WithContext(runCtx)

	group.Go(func() error {
		log.Infow("starting trivia service", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	if cfg.Twitch.Username != "" && cfg.Twitch.OAuthToken != "" && len(cfg.Twitch.Channels) > 0 {
		adapter := twitchirc.NewAdapter(
			cfg.Twitch.Username,
			cfg.Twitch.OAuthToken,
			cfg.Twitch.Channels,
			machine,
			bans,
			ledger,
			controllerCheck(cfg.Trivia.Controllers),
			log,
		)
		group.Go(func() error {
			return adapter.Run(groupCtx)
		})
	} else {
		log.Info("twitch credentials not configured, chat adapter disabled")
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down trivia service")
	case <-groupCtx.Done():
		log.Info("context canceled, shutting down trivia service")
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return group.Wait()
}

// controllerCheck authorizes privileged chat commands from a fixed
// operator list; matching is by user id or login name.
func controllerCheck(controllers []string) twitchirc.ControllerCheck {
	allowed := make(map[string]struct{}, len(controllers))
	for _, c := range controllers {
		allowed[c] = struct{}{}
	}
	return func(channel, userID string) bool {
		_, ok := allowed[userID]
		return ok
	}
}

func newLogger() (*zap.Logger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig = encoderCfg
	return cfg.Build()
}

// demoQuestions seeds the built-in source when no upstream providers
// are configured; swap in real sources via the config file.
func demoQuestions() []sources.RawQuestion {
	return []sources.RawQuestion{
		{
			ID:               "demo-1",
			Type:             domain.MultipleChoice,
			Text:             "What is the capital of France?",
			CorrectAnswers:   []string{"Paris"},
			IncorrectAnswers: []string{"London", "Berlin", "Madrid"},
			Difficulty:       "easy",
		},
		{
			ID:             "demo-2",
			Type:           domain.TrueFalse,
			Text:           "The Go programming language was first released in 2009.",
			CorrectAnswers: []string{"true"},
			Difficulty:     "medium",
		},
		{
			ID:             "demo-3",
			Type:           domain.FreeResponse,
			Text:           "How many sides does a hexagon have?",
			CorrectAnswers: []string{"6"},
			Difficulty:     "easy",
		},
	}
}
