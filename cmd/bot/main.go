package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"cardforge-bot/internal/collection"
	"cardforge-bot/internal/config"
	"cardforge-bot/internal/forge"
	"cardforge-bot/internal/gemini"
	"cardforge-bot/internal/handlers"
	"cardforge-bot/internal/httpclient"
	"cardforge-bot/internal/mediagroup"
	"cardforge-bot/internal/pending"
	"cardforge-bot/internal/prompt"
	"cardforge-bot/internal/telegram"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := newLogger(cfg)

	httpClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout,
	})

	tg, err := telegram.New(telegram.Options{
		Token:      cfg.TelegramToken,
		HTTPClient: httpClient,
		Logger:     logger,
		Debug:      cfg.Debug,
	})
	if err != nil {
		logger.Error("telegram init failed", "err", err)
		os.Exit(1)
	}

	gem := gemini.New(gemini.Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		APIVersion: cfg.GeminiAPIVersion,
		HTTPClient: httpClient,
		Logger:     logger,
	})

	var overrides prompt.Overrides
	if cfg.TemplatesPath != "" {
		overrides, err = prompt.LoadOverrides(cfg.TemplatesPath)
		if err != nil {
			logger.Error("template overrides failed", "path", cfg.TemplatesPath, "err", err)
			os.Exit(1)
		}
	}

	templates, err := prompt.NewRegistry(overrides)
	if err != nil {
		logger.Error("template registry failed", "err", err)
		os.Exit(1)
	}

	store, err := collection.Open(cfg.DBPath)
	if err != nil {
		logger.Error("collection store failed", "path", cfg.DBPath, "err", err)
		os.Exit(1)
	}
	defer store.Close()

	factory, err := forge.NewFactory(forge.Options{
		Generator:   gem,
		Templates:   templates,
		Sequence:    store,
		Logger:      logger,
		JPEGQuality: cfg.JPEGQuality,
		MaxImageDim: cfg.MaxImageDim,
	})
	if err != nil {
		logger.Error("forge setup failed", "err", err)
		os.Exit(1)
	}

	handler := handlers.New(handlers.Options{
		Telegram:   tg,
		Forge:      factory,
		Collection: store,
		Pending:    pending.NewStore(pending.Options{TTL: cfg.PendingTTL}),
		Logger:     logger,
		MaxBatch:   cfg.MaxBatch,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sem := make(chan struct{}, cfg.MaxConcurrent)
	onBatchFlush := func(batch mediagroup.Batch) {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return
		}

		go func() {
			defer func() { <-sem }()

			reqCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
			defer cancel()

			handler.HandleMediaBatch(reqCtx, batch)
		}()
	}

	aggregator := mediagroup.New(mediagroup.Options{
		Debounce: cfg.MediaGroupDebounce,
		OnFlush:  onBatchFlush,
	})
	handler.SetMediaGroupAggregator(aggregator)

	logger.Info("bot started", "username", tg.Username())

	updates := tg.Updates(telegram.UpdatesOptions{
		Timeout: 30 * time.Second,
	})
	defer tg.StopUpdates()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		case update, ok := <-updates:
			if !ok {
				logger.Info("updates channel closed")
				return
			}

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}

			go func(update telegram.Update) {
				defer func() { <-sem }()

				reqCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
				defer cancel()

				if err := handler.HandleUpdate(reqCtx, update); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("handle update failed", "err", err)
				}
			}(update)
		}
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}
