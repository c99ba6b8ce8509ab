package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the binaries read from the environment.
// A .env file is honored when present (local development); real deployments
// set the variables directly.
type Config struct {
	Port string

	// GCSBucket, when set, switches backgrounds/players/qimen lookups from
	// local directories under DataDir to gs://<bucket>/<kind>/... refs.
	GCSBucket  string
	GCPProject string

	// AssetsDir holds the bundled overlays (taiji.png, fog.png,
	// circle-red.png, footer.png) and the calligraphy font. Always local.
	AssetsDir string
	DataDir   string
	OutputDir string

	// RembgURL is an optional rembg-compatible matting endpoint. Empty
	// disables background removal and players are pasted as-is.
	RembgURL string

	// Bot side.
	DiscordToken      string
	AssetsBucket      string
	CoverGeneratorURL string
}

func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:              getenv("PORT", "8080"),
		GCSBucket:         os.Getenv("GCS_BUCKET"),
		GCPProject:        os.Getenv("GOOGLE_CLOUD_PROJECT"),
		AssetsDir:         getenv("ASSETS_DIR", "assets"),
		DataDir:           getenv("DATA_DIR", "data"),
		OutputDir:         getenv("OUTPUT_DIR", "output"),
		RembgURL:          os.Getenv("REMBG_URL"),
		DiscordToken:      os.Getenv("DISCORD_TOKEN"),
		AssetsBucket:      getenv("ASSETS_BUCKET", "nba-cover-assets"),
		CoverGeneratorURL: getenv("COVER_GENERATOR_URL", "http://localhost:8080/generate"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
