package view

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/omarshaarawi/gmwiki/internal/models"
)

const (
	notAvailable   = "N/A"
	unknown        = "Unknown"
	zeroElapsed    = "00:00:00"
	longDateLayout = "January 2, 2006"
)

var (
	printer = message.NewPrinter(language.English)
	upper   = cases.Upper(language.English)
)

// FormatElapsed renders the whole seconds between lastOnline and now as HH:MM:SS.
// Hours are not wrapped. A lastOnline in the future renders as 00:00:00.
func FormatElapsed(lastOnline int64, now time.Time) string {
	diff := now.Unix() - lastOnline
	if diff < 0 {
		return zeroElapsed
	}
	hours := diff / 3600
	minutes := (diff % 3600) / 60
	seconds := diff % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

func FormatDate(epoch *int64) string {
	if epoch == nil || *epoch == 0 {
		return notAvailable
	}
	return time.Unix(*epoch, 0).UTC().Format(longDateLayout)
}

func FormatFollowers(n *int) string {
	if n == nil {
		return notAvailable
	}
	return printer.Sprintf("%d", *n)
}

func FormatStatus(status string) string {
	if status == "" {
		return unknown
	}
	return upper.String(status)
}

func FormatRating(r *int) string {
	if r == nil || *r == 0 {
		return notAvailable
	}
	return strconv.Itoa(*r)
}

type Badge struct {
	Label    string
	StyleKey string
}

// LeagueBadge reports whether a league badge should be shown and how.
func LeagueBadge(league string) (Badge, bool) {
	trimmed := strings.TrimSpace(league)
	if trimmed == "" {
		return Badge{}, false
	}
	return Badge{Label: trimmed, StyleKey: strings.ToLower(trimmed)}, true
}

// DisplayName prefers the player's name over the username.
func DisplayName(p models.PlayerSummary) string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Username
}

// Place prefers the free-text location over the resolved country name.
func Place(p models.PlayerSummary) string {
	if p.Location != "" {
		return p.Location
	}
	return p.CountryName
}

type Card struct {
	Username    string
	Name        string
	AvatarURL   string
	Title       string
	Place       string
	CountryCode string
	Followers   string
	Verified    bool
	IsStreamer  bool
	League      *Badge
}

func NewCard(p models.PlayerSummary) Card {
	c := Card{
		Username:    p.Username,
		Name:        DisplayName(p),
		AvatarURL:   p.AvatarURL,
		Title:       p.Title,
		Place:       Place(p),
		CountryCode: p.CountryCode,
		Followers:   FormatFollowers(p.FollowerCount),
		Verified:    p.Verified,
		IsStreamer:  p.IsStreamer,
	}
	if b, ok := LeagueBadge(p.League); ok {
		c.League = &b
	}
	return c
}

type PlatformLink struct {
	Label string
	URL   string
}

type StatCard struct {
	Label    string
	Rating   string
	LastDate string
	Best     string
	Record   string
}

// ProfilePage is the render-ready form of a profile view.
type ProfilePage struct {
	Found         bool
	Loading       bool
	Username      string
	Name          string
	AvatarURL     string
	ProfileURL    string
	Title         string
	Verified      bool
	IsStreamer    bool
	Location      string
	League        *Badge
	Followers     string
	Status        string
	Joined        string
	HasLastOnline bool
	Elapsed       string
	Platforms     []PlatformLink
	Stats         []StatCard
	PlayerID      string
	FIDE          string
}

func newProfilePage(username string, loading bool, p *models.PlayerProfile, stats *models.PlayerStats, elapsed string) ProfilePage {
	page := ProfilePage{Username: username, Loading: loading}
	if p == nil {
		return page
	}

	page.Found = true
	page.Username = p.Username
	page.Name = DisplayName(p.PlayerSummary)
	page.AvatarURL = p.AvatarURL
	page.ProfileURL = p.ProfileURL
	page.Title = p.Title
	page.Verified = p.Verified
	page.IsStreamer = p.IsStreamer
	page.Location = Place(p.PlayerSummary)
	if b, ok := LeagueBadge(p.League); ok {
		page.League = &b
	}
	page.Followers = FormatFollowers(p.FollowerCount)
	page.Status = FormatStatus(p.Status)
	page.Joined = FormatDate(p.Joined)
	page.HasLastOnline = p.LastOnline != nil
	page.Elapsed = elapsed
	if !page.HasLastOnline {
		page.Elapsed = unknown
	}

	for _, sp := range p.StreamingPlatforms {
		page.Platforms = append(page.Platforms, PlatformLink{Label: upper.String(sp.Type), URL: sp.ChannelURL})
	}
	for _, mode := range stats.Modes() {
		page.Stats = append(page.Stats, newStatCard(mode))
	}

	page.PlayerID = notAvailable
	if p.PlayerID != 0 {
		page.PlayerID = strconv.FormatInt(p.PlayerID, 10)
	}
	if p.FIDERating != nil && *p.FIDERating != 0 {
		page.FIDE = strconv.Itoa(*p.FIDERating)
	}
	return page
}

func newStatCard(mode models.GameMode) StatCard {
	card := StatCard{Label: mode.Label, Rating: notAvailable, LastDate: notAvailable}
	if last := mode.Stats.Last; last != nil {
		card.Rating = FormatRating(last.Rating)
		card.LastDate = FormatDate(last.Date)
	}
	if best := mode.Stats.Best; best != nil && best.Rating != nil {
		card.Best = FormatRating(best.Rating)
	}
	if rec := mode.Stats.Record; rec != nil {
		card.Record = fmt.Sprintf("%d/%d/%d", rec.Win, rec.Loss, rec.Draw)
	}
	return card
}
