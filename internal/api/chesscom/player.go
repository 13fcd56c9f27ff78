package chesscom

import (
	"context"
	"fmt"
	"net/url"

	"github.com/omarshaarawi/gmwiki/internal/models"
)

type API struct {
	client *Client
}

func NewAPI(client *Client) *API {
	return &API{client: client}
}

// TitledPlayers lists the usernames holding title (GM, IM, ...).
func (a *API) TitledPlayers(ctx context.Context, title string) ([]string, error) {
	var resp models.TitledPlayersResponse
	endpoint := fmt.Sprintf("/titled/%s", url.PathEscape(title))

	if err := a.client.GetGuarded(ctx, "titled", endpoint, &resp); err != nil {
		return nil, fmt.Errorf("fetching titled players: %w", err)
	}

	return resp.Players, nil
}

// PlayerProfile returns ErrNotFound (wrapped) when the username does not exist.
func (a *API) PlayerProfile(ctx context.Context, username string) (*models.ProfileResponse, error) {
	var resp models.ProfileResponse
	endpoint := fmt.Sprintf("/player/%s", url.PathEscape(username))

	if err := a.client.Get(ctx, "profile", endpoint, &resp); err != nil {
		return nil, fmt.Errorf("fetching profile for %s: %w", username, err)
	}

	return &resp, nil
}

func (a *API) PlayerStats(ctx context.Context, username string) (*models.StatsResponse, error) {
	var resp models.StatsResponse
	endpoint := fmt.Sprintf("/player/%s/stats", url.PathEscape(username))

	if err := a.client.Get(ctx, "stats", endpoint, &resp); err != nil {
		return nil, fmt.Errorf("fetching stats for %s: %w", username, err)
	}

	return &resp, nil
}

// Country resolves a country reference URL as found in a profile.
func (a *API) Country(ctx context.Context, reference string) (*models.CountryResponse, error) {
	if _, err := url.ParseRequestURI(reference); err != nil {
		return nil, fmt.Errorf("invalid country reference %q: %w", reference, err)
	}

	var resp models.CountryResponse
	if err := a.client.GetURL(ctx, "country", reference, &resp); err != nil {
		return nil, fmt.Errorf("fetching country %s: %w", reference, err)
	}

	return &resp, nil
}
