// Package view holds the list and profile view states and their display
// derivations. A view is owned by one consumer (an HTTP request, a websocket
// connection, a bot command) and discarded with it.
package view

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/omarshaarawi/gmwiki/internal/models"
)

// Directory is the data aggregation surface the views read from.
type Directory interface {
	ListGrandmasters(ctx context.Context) ([]models.PlayerSummary, error)
	GetPlayerProfile(ctx context.Context, username string) (*models.PlayerProfile, error)
	GetPlayerStats(ctx context.Context, username string) *models.PlayerStats
	GetCountryInfo(ctx context.Context, reference string) *models.Country
}

type SortField string

const (
	SortByUsername      SortField = "username"
	SortByDisplayName   SortField = "displayName"
	SortByCountryName   SortField = "countryName"
	SortByFollowerCount SortField = "followerCount"
)

type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

func ParseSortField(s string) (SortField, error) {
	switch f := SortField(s); f {
	case "":
		return SortByUsername, nil
	case SortByUsername, SortByDisplayName, SortByCountryName, SortByFollowerCount:
		return f, nil
	default:
		return "", fmt.Errorf("unknown sort field %q", s)
	}
}

func ParseSortDirection(s string) (SortDirection, error) {
	switch d := SortDirection(strings.ToLower(s)); d {
	case "":
		return Ascending, nil
	case Ascending, Descending:
		return d, nil
	default:
		return "", fmt.Errorf("unknown sort direction %q", s)
	}
}

type Summary struct {
	Total    int `json:"total"`
	Showing  int `json:"showing"`
	Verified int `json:"verified"`
}

const suggestionThreshold = 0.5

type ListView struct {
	dir     Directory
	items   []models.PlayerSummary
	loading bool

	SearchTerm    string
	SortField     SortField
	SortDirection SortDirection
}

// NewListView returns a list view with default search and sort state.
func NewListView(dir Directory) *ListView {
	return &ListView{
		dir:           dir,
		SortField:     SortByUsername,
		SortDirection: Ascending,
	}
}

// Load fetches the directory. A failure is logged and leaves the list empty.
func (v *ListView) Load(ctx context.Context) {
	v.loading = true
	defer func() { v.loading = false }()

	items, err := v.dir.ListGrandmasters(ctx)
	if err != nil {
		slog.Error("Error fetching grandmasters data", "error", err)
		v.items = nil
		return
	}
	v.items = items
}

func (v *ListView) Loading() bool {
	return v.loading
}

func (v *ListView) Items() []models.PlayerSummary {
	return v.items
}

// Displayed filters the items by the search term and sorts them.
func (v *ListView) Displayed() []models.PlayerSummary {
	shown := Filter(v.items, v.SearchTerm)
	Sort(shown, v.SortField, v.SortDirection)
	return shown
}

func (v *ListView) Cards() []Card {
	shown := v.Displayed()
	cards := make([]Card, len(shown))
	for i, p := range shown {
		cards[i] = NewCard(p)
	}
	return cards
}

func (v *ListView) Summary() Summary {
	s := Summary{Total: len(v.items), Showing: len(Filter(v.items, v.SearchTerm))}
	for _, p := range v.items {
		if p.Verified {
			s.Verified++
		}
	}
	return s
}

// Suggestions returns up to limit usernames close to a search term that matched
// nothing. It returns nil when the search has results or is empty.
func (v *ListView) Suggestions(limit int) []string {
	term := strings.ToLower(strings.TrimSpace(v.SearchTerm))
	if term == "" || limit <= 0 || len(Filter(v.items, v.SearchTerm)) > 0 {
		return nil
	}

	type candidate struct {
		username string
		distance int
	}
	var candidates []candidate
	for _, p := range v.items {
		name := strings.ToLower(p.Username)
		distance := fuzzy.LevenshteinDistance(term, name)
		maxLen := float64(max(len(term), len(name)))
		if 1-float64(distance)/maxLen >= suggestionThreshold || fuzzy.MatchFold(term, name) {
			candidates = append(candidates, candidate{username: p.Username, distance: distance})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].username < candidates[j].username
	})

	out := make([]string, 0, min(limit, len(candidates)))
	for _, c := range candidates[:min(limit, len(candidates))] {
		out = append(out, c.username)
	}
	return out
}

// Filter keeps players whose username or display name contains term, ignoring
// case. An empty term keeps everything. The result is a new slice.
func Filter(items []models.PlayerSummary, term string) []models.PlayerSummary {
	needle := strings.ToLower(term)
	out := make([]models.PlayerSummary, 0, len(items))
	for _, p := range items {
		if strings.Contains(strings.ToLower(p.Username), needle) ||
			(p.DisplayName != "" && strings.Contains(strings.ToLower(p.DisplayName), needle)) {
			out = append(out, p)
		}
	}
	return out
}

// Sort orders items in place. The sort is stable, so equal keys keep their
// relative order in both directions.
func Sort(items []models.PlayerSummary, field SortField, dir SortDirection) {
	cmp := comparator(field)
	slices.SortStableFunc(items, func(a, b models.PlayerSummary) int {
		c := cmp(a, b)
		if dir == Descending {
			return -c
		}
		return c
	})
}

func comparator(field SortField) func(a, b models.PlayerSummary) int {
	switch field {
	case SortByFollowerCount:
		return func(a, b models.PlayerSummary) int {
			return followers(a) - followers(b)
		}
	case SortByDisplayName:
		return stringComparator(DisplayName)
	case SortByCountryName:
		return stringComparator(func(p models.PlayerSummary) string { return p.CountryName })
	default:
		return stringComparator(func(p models.PlayerSummary) string { return p.Username })
	}
}

// stringComparator compares with English collation rules. A collator is not
// safe for concurrent use, so each comparator owns one.
func stringComparator(key func(models.PlayerSummary) string) func(a, b models.PlayerSummary) int {
	col := collate.New(language.English)
	return func(a, b models.PlayerSummary) int {
		return col.CompareString(key(a), key(b))
	}
}

func followers(p models.PlayerSummary) int {
	if p.FollowerCount == nil {
		return 0
	}
	return *p.FollowerCount
}
