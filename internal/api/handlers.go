package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/qimenscout/covergen/internal/assets"
	"github.com/qimenscout/covergen/internal/compose"
	"github.com/qimenscout/covergen/internal/config"
	"github.com/qimenscout/covergen/internal/cutout"
	"github.com/qimenscout/covergen/internal/share"
	"github.com/qimenscout/covergen/internal/storage"
	"github.com/qimenscout/covergen/internal/teams"
)

// Server wires the compositor to its collaborators: the blob store behind
// a materializing cache, the randomized asset resolver, the team catalog
// and the optional matting client.
type Server struct {
	cfg      config.Config
	cache    *storage.Cache
	resolver *assets.Resolver
	catalog  *teams.Catalog
	matter   cutout.Matter
}

func NewServer(cfg config.Config, cache *storage.Cache, resolver *assets.Resolver, catalog *teams.Catalog, matter cutout.Matter) *Server {
	return &Server{cfg: cfg, cache: cache, resolver: resolver, catalog: catalog, matter: matter}
}

type generateRequest struct {
	Date        string `json:"date" binding:"required"`
	AwayTeam    string `json:"away_team" binding:"required"`
	HomeTeam    string `json:"home_team" binding:"required"`
	Title       any    `json:"title" binding:"required"`
	CircleCells []int  `json:"circle_cells"`
}

// titleLines accepts both the single-string and list-of-strings forms of
// the title field.
func (r generateRequest) titleLines() ([]string, error) {
	switch v := r.Title.(type) {
	case string:
		return []string{v}, nil
	case []any:
		lines := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("title entries must be strings")
			}
			lines = append(lines, s)
		}
		return lines, nil
	default:
		return nil, fmt.Errorf("title must be a string or a list of strings")
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "Qimen Cover Generator",
		"endpoints": gin.H{
			"GET /health":    "Health check",
			"POST /generate": "Generate a cover image",
			"GET /api/teams": "Search the team catalog",
			"GET /api/qr":    "QR PNG for a share link",
		},
		"usage": gin.H{
			"endpoint": "POST /generate",
			"payload": gin.H{
				"date":         "YYYY-MM-DD",
				"away_team":    "Team code (e.g. HOU)",
				"home_team":    "Team code (e.g. GSW)",
				"title":        []string{"Line 1", "Line 2"},
				"circle_cells": []int{2, 4},
			},
		},
	})
}

func (s *Server) listTeams(c *gin.Context) {
	found := s.catalog.Search(c.Query("q"))
	c.JSON(http.StatusOK, gin.H{"count": len(found), "teams": found})
}

func (s *Server) qr(c *gin.Context) {
	text := c.Query("text")
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing text parameter"})
		return
	}
	size := 400
	if v, err := strconv.Atoi(c.Query("size")); err == nil && v > 0 {
		size = v
	}
	b, err := share.QRPNG(text, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", b)
}

// generate resolves assets, runs the compositor and streams the JPEG back.
// Failures are always a structured JSON body: input-retrieval errors are
// tagged apart from generation errors so callers can tell "could not fetch
// inputs" from "could not build output". No partial image is ever returned.
func (s *Server) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload", "message": err.Error()})
		return
	}
	titleLines, err := req.titleLines()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload", "message": err.Error()})
		return
	}

	ctx := c.Request.Context()

	bgRef, err := s.resolver.ResolveBackground(ctx, s.assetDir("backgrounds"))
	if err != nil {
		s.retrievalError(c, "listing backgrounds", err)
		return
	}
	bgPath, err := s.cache.Materialize(ctx, bgRef)
	if err != nil {
		s.retrievalError(c, "fetching background", err)
		return
	}

	playerRefs, err := s.resolver.ResolvePlayers(ctx, req.AwayTeam, req.HomeTeam, s.assetDir("players"))
	if err != nil {
		s.retrievalError(c, "listing players", err)
		return
	}

	// Optional assets degrade per-layer: a failed fetch drops the layer
	// instead of failing the request.
	qimenPath := s.materializeOptional(c, s.assetRef("qimen", req.Date+".jpg"))
	players := make([]string, 0, len(playerRefs))
	for _, ref := range playerRefs {
		if p := s.materializeOptional(c, ref); p != "" {
			players = append(players, p)
		}
	}

	canvas, results, err := compose.Compose(compose.Inputs{
		Background:  bgPath,
		Qimen:       qimenPath,
		Players:     players,
		TitleLines:  titleLines,
		DateLabel:   req.Date,
		CircleCells: req.CircleCells,
		Taiji:       filepath.Join(s.cfg.AssetsDir, "taiji.png"),
		Fog:         filepath.Join(s.cfg.AssetsDir, "fog.png"),
		Circle:      filepath.Join(s.cfg.AssetsDir, "circle-red.png"),
		Footer:      filepath.Join(s.cfg.AssetsDir, "footer.png"),
		AssetsDir:   s.cfg.AssetsDir,
		Matter:      s.matter,
	})
	if err != nil {
		log.Error().Err(err).Str("date", req.Date).Msg("cover generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to generate cover",
			"message": err.Error(),
			"kind":    "generation",
		})
		return
	}
	for _, r := range results {
		if !r.Placed {
			log.Warn().Str("layer", r.Layer).Str("reason", r.Reason).Msg("cover layer skipped")
		}
	}

	outPath := filepath.Join(s.cfg.OutputDir, "cover_"+req.Date+".jpg")
	if err := compose.WriteCover(outPath, canvas); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to write cover",
			"message": err.Error(),
			"kind":    "generation",
		})
		return
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "cover generation completed but file not found",
			"message": err.Error(),
			"kind":    "generation",
		})
		return
	}
	log.Info().Str("path", outPath).Int("bytes", len(data)).Msg("cover generated")
	c.Data(http.StatusOK, "image/jpeg", data)
}

func (s *Server) retrievalError(c *gin.Context, what string, err error) {
	log.Error().Err(err).Msg(what + " failed")
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "failed to retrieve input assets",
		"message": fmt.Sprintf("%s: %v", what, err),
		"kind":    "input_retrieval",
	})
}

func (s *Server) materializeOptional(c *gin.Context, ref string) string {
	path, err := s.cache.Materialize(c.Request.Context(), ref)
	if err != nil {
		log.Warn().Err(err).Str("ref", ref).Msg("optional asset fetch failed")
		return ""
	}
	return path
}

// assetDir maps a store kind (backgrounds, players, qimen) to either a
// gs:// prefix in the configured bucket or a local directory under DataDir.
func (s *Server) assetDir(kind string) string {
	if s.cfg.GCSBucket != "" {
		return storage.RemoteRef(s.cfg.GCSBucket, kind)
	}
	return filepath.Join(s.cfg.DataDir, kind)
}

func (s *Server) assetRef(kind, filename string) string {
	if s.cfg.GCSBucket != "" {
		return storage.RemoteRef(s.cfg.GCSBucket, kind, filename)
	}
	return filepath.Join(s.cfg.DataDir, kind, filename)
}
