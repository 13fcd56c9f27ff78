package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/omarshaarawi/gmwiki/internal/api/chesscom"
	"github.com/omarshaarawi/gmwiki/internal/metrics"
	"github.com/omarshaarawi/gmwiki/internal/models"
)

const (
	grandmasterTitle = "GM"
	// MaxDirectoryPlayers bounds the per-player fan-out of a listing.
	MaxDirectoryPlayers = 50
)

type DirectoryService struct {
	api         *chesscom.API
	fanOutLimit int
}

// NewDirectoryService builds the aggregation service. fanOutLimit caps concurrent
// per-player fetch chains; zero or less means uncapped.
func NewDirectoryService(api *chesscom.API, fanOutLimit int) *DirectoryService {
	return &DirectoryService{api: api, fanOutLimit: fanOutLimit}
}

// ListGrandmasters returns enriched summaries for the first MaxDirectoryPlayers
// grandmasters, in source order. Players whose profile cannot be fetched are
// dropped. Only a failure of the username list itself is returned as an error.
func (s *DirectoryService) ListGrandmasters(ctx context.Context) ([]models.PlayerSummary, error) {
	usernames, err := s.api.TitledPlayers(ctx, grandmasterTitle)
	if err != nil {
		return nil, fmt.Errorf("error fetching grandmasters: %w", err)
	}
	if len(usernames) > MaxDirectoryPlayers {
		usernames = usernames[:MaxDirectoryPlayers]
	}

	results := make([]*models.PlayerSummary, len(usernames))

	var g errgroup.Group
	if s.fanOutLimit > 0 {
		g.SetLimit(s.fanOutLimit)
	}
	for i, username := range usernames {
		g.Go(func() error {
			results[i] = s.summarize(ctx, username)
			return nil
		})
	}
	_ = g.Wait()

	summaries := make([]models.PlayerSummary, 0, len(results))
	for _, r := range results {
		if r != nil {
			summaries = append(summaries, *r)
		}
	}

	metrics.DirectoryPlayers.Observe(float64(len(summaries)))
	slog.Info("Listed grandmasters", "requested", len(usernames), "resolved", len(summaries))
	return summaries, nil
}

func (s *DirectoryService) summarize(ctx context.Context, username string) *models.PlayerSummary {
	profile, err := s.GetPlayerProfile(ctx, username)
	if err != nil {
		slog.Error("Error fetching profile", "username", username, "error", err)
		return nil
	}
	if profile == nil {
		slog.Debug("Skipping unknown player", "username", username)
		return nil
	}

	if profile.CountryReferenceURL != "" {
		if country := s.GetCountryInfo(ctx, profile.CountryReferenceURL); country != nil {
			profile.CountryCode = country.Code
			profile.CountryName = country.Name
		}
	}

	return &profile.PlayerSummary
}

// GetPlayerProfile returns (nil, nil) when the player does not exist.
func (s *DirectoryService) GetPlayerProfile(ctx context.Context, username string) (*models.PlayerProfile, error) {
	resp, err := s.api.PlayerProfile(ctx, username)
	if err != nil {
		if errors.Is(err, chesscom.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	profile := models.NewPlayerProfile(resp)
	if profile.Username == "" {
		profile.Username = username
	}
	return profile, nil
}

// GetPlayerStats never fails: any error is logged and yields nil.
func (s *DirectoryService) GetPlayerStats(ctx context.Context, username string) *models.PlayerStats {
	resp, err := s.api.PlayerStats(ctx, username)
	if err != nil {
		slog.Error("Error fetching stats", "username", username, "error", err)
		return nil
	}
	return models.NewPlayerStats(resp)
}

// GetCountryInfo never fails: any error is logged and yields nil.
func (s *DirectoryService) GetCountryInfo(ctx context.Context, reference string) *models.Country {
	resp, err := s.api.Country(ctx, reference)
	if err != nil {
		slog.Error("Error fetching country info", "reference", reference, "error", err)
		return nil
	}
	return &models.Country{Code: resp.Code, Name: resp.Name}
}
