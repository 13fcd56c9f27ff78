package models

type PlayerSummary struct {
	PlayerID           int64               `json:"playerId"`
	Username           string              `json:"username"`
	DisplayName        string              `json:"displayName,omitempty"`
	AvatarURL          string              `json:"avatarUrl,omitempty"`
	ProfileURL         string              `json:"profileUrl,omitempty"`
	Title              string              `json:"title,omitempty"`
	FollowerCount      *int                `json:"followerCount,omitempty"`
	CountryName        string              `json:"countryName,omitempty"`
	CountryCode        string              `json:"countryCode,omitempty"`
	Location           string              `json:"location,omitempty"`
	LastOnline         *int64              `json:"lastOnlineEpochSeconds,omitempty"`
	Joined             *int64              `json:"joinedEpochSeconds,omitempty"`
	Status             string              `json:"status,omitempty"`
	IsStreamer         bool                `json:"isStreamer"`
	TwitchURL          string              `json:"twitchUrl,omitempty"`
	Verified           bool                `json:"verified"`
	League             string              `json:"league,omitempty"`
	StreamingPlatforms []StreamingPlatform `json:"streamingPlatforms"`
}

type PlayerProfile struct {
	PlayerSummary
	CountryReferenceURL string `json:"countryReferenceUrl,omitempty"`
	FIDERating          *int   `json:"fideRating,omitempty"`
}

type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// PlayerStats holds the per game mode ratings of a player. Every mode may be absent.
type PlayerStats struct {
	Daily960 *GameModeStats `json:"daily960,omitempty"`
	Daily    *GameModeStats `json:"daily,omitempty"`
	Rapid    *GameModeStats `json:"rapid,omitempty"`
	Blitz    *GameModeStats `json:"blitz,omitempty"`
	Bullet   *GameModeStats `json:"bullet,omitempty"`
	FIDE     *int           `json:"fide,omitempty"`
}

type GameMode struct {
	Label string
	Stats *GameModeStats
}

// Modes returns the present game modes in display order.
func (s *PlayerStats) Modes() []GameMode {
	if s == nil {
		return nil
	}
	all := []GameMode{
		{Label: "960 Daily", Stats: s.Daily960},
		{Label: "Daily", Stats: s.Daily},
		{Label: "Rapid", Stats: s.Rapid},
		{Label: "Blitz", Stats: s.Blitz},
		{Label: "Bullet", Stats: s.Bullet},
	}
	modes := make([]GameMode, 0, len(all))
	for _, m := range all {
		if m.Stats != nil {
			modes = append(modes, m)
		}
	}
	return modes
}

func NewPlayerStats(r *StatsResponse) *PlayerStats {
	if r == nil {
		return nil
	}
	return &PlayerStats{
		Daily960: r.Chess960Daily,
		Daily:    r.ChessDaily,
		Rapid:    r.ChessRapid,
		Blitz:    r.ChessBlitz,
		Bullet:   r.ChessBullet,
		FIDE:     r.FIDE,
	}
}

// NewPlayerProfile maps a profile response; country fields stay empty until resolved.
func NewPlayerProfile(r *ProfileResponse) *PlayerProfile {
	if r == nil {
		return nil
	}
	platforms := r.StreamingPlatforms
	if platforms == nil {
		platforms = []StreamingPlatform{}
	}
	return &PlayerProfile{
		PlayerSummary: PlayerSummary{
			PlayerID:           r.PlayerID,
			Username:           r.Username,
			DisplayName:        r.Name,
			AvatarURL:          r.Avatar,
			ProfileURL:         r.URL,
			Title:              r.Title,
			FollowerCount:      r.Followers,
			Location:           r.Location,
			LastOnline:         r.LastOnline,
			Joined:             r.Joined,
			Status:             r.Status,
			IsStreamer:         r.IsStreamer,
			TwitchURL:          r.TwitchURL,
			Verified:           r.Verified,
			League:             r.League,
			StreamingPlatforms: platforms,
		},
		CountryReferenceURL: r.Country,
		FIDERating:          r.FIDE,
	}
}
