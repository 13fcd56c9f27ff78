package models

import "github.com/goccy/go-json"

type TitledPlayersResponse struct {
	Players []string `json:"players"`
}

type ProfileResponse struct {
	PlayerID           int64               `json:"player_id"`
	ID                 string              `json:"@id"`
	URL                string              `json:"url"`
	Name               string              `json:"name"`
	Username           string              `json:"username"`
	Title              string              `json:"title"`
	Followers          *int                `json:"followers"`
	Country            string              `json:"country"`
	Location           string              `json:"location"`
	LastOnline         *int64              `json:"last_online"`
	Joined             *int64              `json:"joined"`
	Status             string              `json:"status"`
	IsStreamer         bool                `json:"is_streamer"`
	TwitchURL          string              `json:"twitch_url"`
	Verified           bool                `json:"verified"`
	League             string              `json:"league"`
	Avatar             string              `json:"avatar"`
	FIDE               *int                `json:"fide"`
	StreamingPlatforms []StreamingPlatform `json:"streaming_platforms"`
}

type StreamingPlatform struct {
	Type       string `json:"type"`
	ChannelURL string `json:"channel_url"`
}

type CountryResponse struct {
	ID   string `json:"@id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// StatsResponse decodes each game mode on its own. A mode or rating that does
// not have the expected shape is left nil instead of failing the whole record.
type StatsResponse struct {
	ChessDaily    *GameModeStats `json:"chess_daily"`
	Chess960Daily *GameModeStats `json:"chess960_daily"`
	ChessRapid    *GameModeStats `json:"chess_rapid"`
	ChessBlitz    *GameModeStats `json:"chess_blitz"`
	ChessBullet   *GameModeStats `json:"chess_bullet"`
	FIDE          *int           `json:"fide"`
}

func (r *StatsResponse) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	modes := map[string]**GameModeStats{
		"chess_daily":    &r.ChessDaily,
		"chess960_daily": &r.Chess960Daily,
		"chess_rapid":    &r.ChessRapid,
		"chess_blitz":    &r.ChessBlitz,
		"chess_bullet":   &r.ChessBullet,
	}
	for key, dst := range modes {
		*dst = nil
		field, ok := raw[key]
		if !ok || string(field) == "null" {
			continue
		}
		var mode GameModeStats
		if err := json.Unmarshal(field, &mode); err == nil {
			*dst = &mode
		}
	}

	r.FIDE = nil
	if field, ok := raw["fide"]; ok {
		var fide *int
		if err := json.Unmarshal(field, &fide); err == nil {
			r.FIDE = fide
		}
	}
	return nil
}

type GameModeStats struct {
	Last   *RatingSnapshot `json:"last"`
	Best   *RatingSnapshot `json:"best"`
	Record *GameRecord     `json:"record"`
}

type RatingSnapshot struct {
	Rating *int   `json:"rating"`
	Date   *int64 `json:"date"`
}

type GameRecord struct {
	Win  int `json:"win"`
	Loss int `json:"loss"`
	Draw int `json:"draw"`
}
