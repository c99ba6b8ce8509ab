// Package assets picks which background and player images a cover uses.
// Selection is uniform-random among matching filenames; the random source
// is injected so tests can pin choices.
package assets

import (
	"context"
	"math/rand"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/qimenscout/covergen/internal/storage"
)

// DefaultBackground is used when the backgrounds directory has no bg_*.png
// entries at all.
const DefaultBackground = "bg_001.png"

type Resolver struct {
	store storage.Store
	rng   *rand.Rand
}

func NewResolver(store storage.Store, rng *rand.Rand) *Resolver {
	return &Resolver{store: store, rng: rng}
}

// ResolveBackground picks one bg_*.png under dir at random and returns its
// ref (local path or gs:// ref, matching the dir form).
func (r *Resolver) ResolveBackground(ctx context.Context, dir string) (string, error) {
	names, err := r.store.List(ctx, dir)
	if err != nil {
		return "", err
	}
	var candidates []string
	for _, n := range names {
		if strings.HasPrefix(n, "bg_") && strings.HasSuffix(n, ".png") {
			candidates = append(candidates, n)
		}
	}
	chosen := DefaultBackground
	if len(candidates) > 0 {
		chosen = candidates[r.rng.Intn(len(candidates))]
	}
	log.Info().Str("background", chosen).Msg("selected background")
	return joinRef(dir, chosen), nil
}

// ResolvePlayers picks one {code}_*.png per team under dir, away team first.
// A team with no matching file contributes no entry, so the result has
// between zero and two refs and the away/home ordering is preserved.
func (r *Resolver) ResolvePlayers(ctx context.Context, awayTeam, homeTeam, dir string) ([]string, error) {
	names, err := r.store.List(ctx, dir)
	if err != nil {
		return nil, err
	}
	var pngs []string
	for _, n := range names {
		if strings.HasSuffix(n, ".png") {
			pngs = append(pngs, n)
		}
	}

	var refs []string
	for _, team := range []string{awayTeam, homeTeam} {
		var matches []string
		for _, n := range pngs {
			if strings.HasPrefix(n, team+"_") {
				matches = append(matches, n)
			}
		}
		if len(matches) == 0 {
			log.Warn().Str("team", team).Msg("no player image for team")
			continue
		}
		chosen := matches[r.rng.Intn(len(matches))]
		log.Info().Str("team", team).Str("player", chosen).Msg("selected player image")
		refs = append(refs, joinRef(dir, chosen))
	}
	return refs, nil
}

func joinRef(dir, name string) string {
	if storage.IsRemote(dir) {
		return strings.TrimSuffix(dir, "/") + "/" + path.Base(name)
	}
	return filepath.Join(dir, name)
}
