/* main.go
 * The "main" method for running the watcher. Leagues are read from the league file, secrets from the environment
 * Usage: league-watcher [run|check-config] [--env-file .env]
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"league-watcher/api/api"
	"league-watcher/api/events"
	"league-watcher/api/external"
	"league-watcher/api/league"
	"league-watcher/api/metrics"
	"league-watcher/api/reconcile"
	"league-watcher/api/scheduling"
	"league-watcher/api/store"
	"league-watcher/api/watcher"
	"league-watcher/bot"
	"league-watcher/config"
	"league-watcher/web"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"
)

func main() {
	envFlag := &cli.StringFlag{
		Name:  "env-file",
		Value: ".env",
		Usage: "Path to an optional .env file",
	}

	cliApp := &cli.App{
		Name:   "league-watcher",
		Usage:  "watch lichess for league games and report them to heltour and discord",
		Flags:  []cli.Flag{envFlag},
		Action: run,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "watch every configured league until interrupted",
				Flags:  []cli.Flag{envFlag},
				Action: run,
			},
			{
				Name:   "check-config",
				Usage:  "load and validate the configuration, then exit",
				Flags:  []cli.Flag{envFlag},
				Action: checkConfig,
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		slog.Error("league-watcher failed", "error", err)
		os.Exit(1)
	}
}

func checkConfig(c *cli.Context) error {
	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return err
	}
	for _, l := range cfg.Leagues {
		fmt.Printf("%s: heltour %s (%s), gamelinks %s, results %s, %d players mapped\n",
			l.Name, l.Heltour.BaseEndpoint, l.Heltour.LeagueTag, l.GameLinks.ChannelID, l.Results.ChannelID, len(l.Players))
	}
	fmt.Println("configuration ok")
	return nil
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Env.LogLevel, os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var st store.Interface
	if cfg.Env.MongoURI != "" {
		s, err := store.NewStore(ctx, cfg.Env.MongoDatabase, cfg.Env.MongoURI)
		if err != nil {
			return fmt.Errorf("failed to initialize store: %w", err)
		}
		defer func() {
			if err := s.Close(context.Background()); err != nil {
				logger.Error("failed to close store", "error", err)
			}
		}()
		st = s
	} else {
		logger.Warn("MONGO_URI not set, pairing snapshots and the decision ledger are disabled")
	}

	notifier := bot.NewNotifier(logger)
	bus := events.NewBus()
	subscribeLogging(bus, logger)

	leagues, registry := buildLeagues(cfg, wiring{
		limiter:  rate.NewLimiter(rate.Limit(cfg.Env.RequestsPerSec), 1),
		store:    st,
		notifier: notifier,
		bus:      bus,
		logger:   logger,
		metrics:  m,
	})

	apiPtr, err := api.NewAPI(leagues, registry, st)
	if err != nil {
		return fmt.Errorf("failed to initialize API: %w", err)
	}

	if cfg.Env.WebhookSecret == "" {
		logger.Warn("HELTOUR_WEBHOOK_SECRET not set, the heltour webhook is disabled")
	}

	var wg sync.WaitGroup
	for _, l := range leagues {
		startLeague(ctx, l, logger)
		wg.Add(1)
		go func(l *league.League) {
			defer wg.Done()
			l.RunRefreshLoop(ctx, cfg.Env.RefreshInterval)
		}(l)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := web.Start(ctx, web.Config{
			Addr:          cfg.Env.HTTPAddr,
			API:           apiPtr,
			Gatherer:      reg,
			Logger:        logger,
			WebhookSecret: cfg.Env.WebhookSecret,
		}); err != nil {
			logger.Error("http server failed", "error", err)
		}
	}()

	if cfg.Env.DiscordToken != "" {
		b, err := bot.NewBot(cfg.Env.DiscordToken, apiPtr, logger)
		if err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := b.Run(ctx, notifier); err != nil {
				logger.Error("discord bot failed", "error", err)
			}
		}()
	} else {
		logger.Warn("DISCORD_TOKEN not set, chat messages will only be logged")
	}

	<-ctx.Done()
	logger.Info("shutting down")
	registry.StopAll()
	wg.Wait()
	return nil
}

// wiring holds the collaborators shared by every league
type wiring struct {
	limiter  *rate.Limiter
	store    store.Interface
	notifier reconcile.Notifier
	bus      *events.Bus
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// buildLeagues creates the league, the reconciliation engine and the watcher of every configured league
// Preconditions: Receives a validated configuration
// Postconditions: Returns the leagues in configuration order and a registry holding one idle watcher per league. Each
// watcher follows the pairing refreshes of its league
func buildLeagues(cfg *config.Config, wr wiring) ([]*league.League, *watcher.Registry) {
	lichess := external.NewLichess(cfg.LichessBaseURL, cfg.WatcherBaseURL, wr.limiter)
	registry := watcher.NewRegistry()

	// the store is optional and must stay a nil interface when absent
	var snapshots league.SnapshotStore
	var ledger reconcile.Ledger
	if wr.store != nil {
		snapshots = wr.store
		ledger = wr.store
	}

	leagues := make([]*league.League, 0, len(cfg.Leagues))
	for _, lc := range cfg.Leagues {
		heltour := external.NewHeltour(external.HeltourConfig{
			BaseEndpoint: lc.Heltour.BaseEndpoint,
			Token:        lc.Heltour.Token,
			LeagueTag:    lc.Heltour.LeagueTag,
			Defaults:     leagueDefaults(lc),
		}, lichess, wr.limiter)

		l := league.New(lc, heltour, league.Options{Snapshots: snapshots, Logger: wr.logger, Metrics: wr.metrics})

		engine := reconcile.NewEngine(reconcile.Config{
			League:           lc.Name,
			GameLinksChannel: lc.GameLinks.ChannelID,
			ResultsChannel:   lc.Results.ChannelID,
		}, reconcile.Deps{
			Pairings:   l,
			Repository: heltour,
			Games:      lichess,
			Extrema:    scheduling.Scheduler{Extrema: lc.GameLinks.Extrema},
			Notifier:   wr.notifier,
			Bus:        wr.bus,
			Ledger:     ledger,
			Logger:     wr.logger,
			Metrics:    wr.metrics,
		})

		w := watcher.New(lc.Name, watcher.Deps{
			Transport: lichess,
			Refresher: l,
			Processor: engine,
			Logger:    wr.logger,
			Metrics:   wr.metrics,
		})
		l.OnPairingsRefreshed(w.OnPairingsRefreshed)

		// names are unique after validation
		if err := registry.Add(w); err != nil {
			wr.logger.Error("failed to register watcher", "league", lc.Name, "error", err)
			continue
		}
		leagues = append(leagues, l)
	}
	return leagues, registry
}

// startLeague fetches the first pairings of a league, which subscribes its watcher. The snapshot is only used when
// heltour cannot be reached, so a healthy start connects once
func startLeague(ctx context.Context, l *league.League, logger *slog.Logger) {
	err := l.RefreshCurrentRoundSchedules(ctx)
	if err == nil {
		return
	}
	logger.Warn("initial pairing refresh failed, falling back to the snapshot", "league", l.Name(), "error", err)
	if err := l.Prime(ctx); err != nil {
		logger.Error("failed to load pairing snapshot", "league", l.Name(), "error", err)
	}
}

func subscribeLogging(bus *events.Bus, logger *slog.Logger) {
	log := logger.With("component", "events")
	bus.OnGameStarted(func(e events.GameStarted) {
		log.Info("game started", "league", e.League, "white", e.White, "black", e.Black, "game_id", e.GameID)
	})
	bus.OnGameOver(func(e events.GameOver) {
		log.Info("game over", "league", e.League, "white", e.White, "black", e.Black, "game_id", e.GameID, "result", e.Result)
	})
}
