package nflverse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/albapepper/scoracle-fantasy/internal/provider"
)

// Release tags and asset names, one table per season.
const (
	playsRelease       = "pbp"
	playerStatsRelease = "player_stats"
	rosterRelease      = "rosters"
)

func playsAsset(year int) string       { return fmt.Sprintf("play_by_play_%d.csv.gz", year) }
func playerStatsAsset(year int) string { return fmt.Sprintf("player_stats_%d.csv.gz", year) }
func rosterAsset(year int) string      { return fmt.Sprintf("roster_%d.csv.gz", year) }

// HTTPSource downloads tables from the nflverse-data releases.
type HTTPSource struct {
	client *Client
}

// NewHTTPSource returns a source backed by client.
func NewHTTPSource(client *Client) *HTTPSource {
	return &HTTPSource{client: client}
}

var _ provider.Source = (*HTTPSource)(nil)

// Plays downloads and decodes the play-by-play table for year.
func (s *HTTPSource) Plays(ctx context.Context, year int) ([]provider.Play, error) {
	r, err := s.client.Fetch(ctx, path.Join(playsRelease, playsAsset(year)))
	if err != nil {
		return nil, err
	}
	return DecodePlays(r)
}

// PlayerWeeks downloads and decodes the weekly player stats for year.
func (s *HTTPSource) PlayerWeeks(ctx context.Context, year int) ([]provider.PlayerWeek, error) {
	r, err := s.client.Fetch(ctx, path.Join(playerStatsRelease, playerStatsAsset(year)))
	if err != nil {
		return nil, err
	}
	return DecodePlayerWeeks(r)
}

// Roster downloads and decodes the season roster for year.
func (s *HTTPSource) Roster(ctx context.Context, year int) ([]provider.RosterRow, error) {
	r, err := s.client.Fetch(ctx, path.Join(rosterRelease, rosterAsset(year)))
	if err != nil {
		return nil, err
	}
	return DecodeRoster(r)
}

// DirSource reads the same tables from a local directory, as either the
// downloaded .csv.gz assets or uncompressed .csv files.
type DirSource struct {
	Dir string
}

var _ provider.Source = DirSource{}

// Plays decodes the play-by-play table for year.
func (s DirSource) Plays(_ context.Context, year int) ([]provider.Play, error) {
	var out []provider.Play
	err := s.read(playsAsset(year), func(r io.Reader) (err error) {
		out, err = DecodePlays(r)
		return err
	})
	return out, err
}

// PlayerWeeks decodes the weekly player stats for year.
func (s DirSource) PlayerWeeks(_ context.Context, year int) ([]provider.PlayerWeek, error) {
	var out []provider.PlayerWeek
	err := s.read(playerStatsAsset(year), func(r io.Reader) (err error) {
		out, err = DecodePlayerWeeks(r)
		return err
	})
	return out, err
}

// Roster decodes the season roster for year.
func (s DirSource) Roster(_ context.Context, year int) ([]provider.RosterRow, error) {
	var out []provider.RosterRow
	err := s.read(rosterAsset(year), func(r io.Reader) (err error) {
		out, err = DecodeRoster(r)
		return err
	})
	return out, err
}

// read opens asset, preferring the compressed name and falling back to plain CSV.
func (s DirSource) read(asset string, fn func(io.Reader) error) error {
	candidates := []string{asset, strings.TrimSuffix(asset, ".gz")}
	for _, name := range candidates {
		f, err := os.Open(filepath.Join(s.Dir, name))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("open %s: %w", name, err)
		}
		defer f.Close()

		r, err := decompress(name, f)
		if err != nil {
			return err
		}
		return fn(r)
	}
	return fmt.Errorf("%s not found in %s: %w", strings.TrimSuffix(asset, ".csv.gz"), s.Dir, os.ErrNotExist)
}
