package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/qimenscout/covergen/internal/api"
	"github.com/qimenscout/covergen/internal/assets"
	"github.com/qimenscout/covergen/internal/config"
	"github.com/qimenscout/covergen/internal/cutout"
	"github.com/qimenscout/covergen/internal/storage"
	"github.com/qimenscout/covergen/internal/teams"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	cfg := config.Load()

	var store storage.Store = storage.Local{}
	if cfg.GCSBucket != "" {
		gcs, err := storage.NewGCS(context.Background(), cfg.GCSBucket)
		if err != nil {
			log.Fatal().Err(err).Msg("connecting to GCS")
		}
		defer gcs.Close()
		store = gcs
		log.Info().Str("bucket", cfg.GCSBucket).Msg("using GCS asset store")
	} else {
		log.Info().Str("dir", cfg.DataDir).Msg("using local asset store")
	}

	cache := storage.NewCache(store)
	resolver := assets.NewResolver(store, rand.New(rand.NewSource(time.Now().UnixNano())))

	// Team catalog is best-effort: without teams.csv every code validates.
	catalog, err := teams.Load(cfg.DataDir)
	if err != nil {
		log.Warn().Err(err).Msg("team catalog not loaded")
		catalog = teams.Empty()
	} else {
		log.Info().Int("teams", catalog.Len()).Msg("team catalog loaded")
	}

	var matter cutout.Matter
	if cfg.RembgURL != "" {
		matter = cutout.NewHTTPMatter(cfg.RembgURL)
		log.Info().Str("url", cfg.RembgURL).Msg("background removal enabled")
	}

	r := gin.Default()
	api.RegisterRoutes(r, api.NewServer(cfg, cache, resolver, catalog, matter))

	log.Info().Str("port", cfg.Port).Msg("starting cover generator service")
	if err := r.Run(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
