package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/ad/go-telegram-broadcast/internal/config"
	"github.com/ad/go-telegram-broadcast/internal/db"
	"github.com/ad/go-telegram-broadcast/internal/handlers"
	"github.com/ad/go-telegram-broadcast/internal/logx"
	"github.com/ad/go-telegram-broadcast/internal/registry"
	"github.com/ad/go-telegram-broadcast/internal/services"
	"github.com/ad/go-telegram-broadcast/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logx.New("info", logx.FormatConsole)
		fallback.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logx.New(cfg.LogLevel, cfg.LogFormat)

	sqlDB, err := db.OpenStore(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open store")
	}
	defer sqlDB.Close()

	dbQueue := db.NewDBQueue(sqlDB)
	defer dbQueue.Close()

	adminConfigRepo := db.NewAdminConfigRepository(dbQueue)
	broadcastLogRepo := db.NewBroadcastLogRepository(dbQueue)

	// Seed the admin list from the environment on first run only; after that
	// the store is authoritative.
	if err := adminConfigRepo.Seed(cfg.AdminIDs); err != nil {
		log.Warn().Err(err).Msg("failed to seed admin list from environment")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	var b *bot.Bot
	var botUser *tgmodels.User
	const maxAttempts = 5
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			delay := time.Duration(i*3) * time.Second
			log.Info().Dur("delay", delay).Msg("retrying telegram connect")
			select {
			case <-ctx.Done():
				log.Fatal().Msg("interrupted during startup")
			case <-time.After(delay):
			}
		}
		log.Info().Int("attempt", i+1).Int("max", maxAttempts).Msg("connecting to Telegram API")
		b, err = bot.New(cfg.BotToken, bot.WithHTTPClient(15*time.Second, httpClient))
		if err != nil {
			log.Warn().Err(err).Msg("failed to create bot")
			continue
		}
		getMeCtx, getMeCancel := context.WithTimeout(context.Background(), 10*time.Second)
		botUser, err = b.GetMe(getMeCtx)
		getMeCancel()
		if err == nil {
			break
		}
		log.Warn().Err(err).Msg("failed to get bot info")
	}
	if err != nil {
		log.Fatal().Int("attempts", maxAttempts).Msg("failed to connect to Telegram API")
	}

	directory := services.LoadAdminDirectory(adminConfigRepo, log)
	userRegistry := registry.NewUserRegistry()
	sessions := session.NewStore()
	broadcaster := services.NewBroadcaster(b, cfg.BroadcastWorkers, log)
	backupManager := services.NewBackupManager(b, dbQueue)

	broadcastHandler := handlers.NewBroadcastHandler(
		b,
		directory,
		userRegistry,
		sessions,
		broadcaster,
		broadcastLogRepo,
		backupManager,
		log,
	)

	b.RegisterHandlerMatchFunc(func(update *tgmodels.Update) bool {
		return true
	}, func(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
		if update.Message != nil && update.Message.From != nil {
			if broadcastHandler.HandleCommand(ctx, update.Message) {
				return
			}
			broadcastHandler.HandleMessage(ctx, update.Message)
		}
		if update.CallbackQuery != nil {
			broadcastHandler.HandleCallback(ctx, update.CallbackQuery)
		}
	})

	log.Info().
		Str("db", cfg.DBPath).
		Str("mode", cfg.RunMode).
		Int("admins", directory.Len()).
		Msg("bot started")
	if botUser != nil {
		log.Info().Str("username", botUser.Username).Msg("authorized")
	}

	switch cfg.RunMode {
	case config.RunModeWebhook:
		runWebhook(ctx, cfg, b, log)
	default:
		b.Start(ctx)
	}
}

// runWebhook registers the webhook with Telegram and serves update POSTs.
// The SDK's handler acknowledges every POST with 200 regardless of what
// happens to the update afterwards.
func runWebhook(ctx context.Context, cfg *config.Config, b *bot.Bot, log zerolog.Logger) {
	if _, err := b.SetWebhook(ctx, &bot.SetWebhookParams{URL: cfg.WebhookURL}); err != nil {
		log.Fatal().Err(err).Str("url", cfg.WebhookURL).Msg("failed to set webhook")
	}

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: b.WebhookHandler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("webhook listener started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("webhook listener failed")
		}
	}()

	b.StartWebhook(ctx)
}
