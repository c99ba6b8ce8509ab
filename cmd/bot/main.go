package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/qimenscout/covergen/internal/bot"
	"github.com/qimenscout/covergen/internal/config"
	"github.com/qimenscout/covergen/internal/storage"
	"github.com/qimenscout/covergen/internal/teams"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	cfg := config.Load()

	if cfg.DiscordToken == "" {
		log.Fatal().Msg("missing DISCORD_TOKEN environment variable")
	}

	store, err := storage.NewGCS(context.Background(), cfg.AssetsBucket)
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to GCS")
	}
	defer store.Close()

	catalog, err := teams.Load(cfg.DataDir)
	if err != nil {
		log.Warn().Err(err).Msg("team catalog not loaded")
		catalog = teams.Empty()
	}

	b, err := bot.New(cfg.DiscordToken, store, cfg.AssetsBucket, catalog, cfg.CoverGeneratorURL)
	if err != nil {
		log.Fatal().Err(err).Msg("creating bot")
	}
	if err := b.Start(); err != nil {
		log.Fatal().Err(err).Msg("starting bot")
	}
	defer b.Stop()

	// Keepalive endpoint so the hosting platform sees the bot as healthy.
	go func() {
		r := gin.Default()
		r.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		if err := r.Run(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("health server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutting down")
}
