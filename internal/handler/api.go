package handler

import (
	"net/http"

	"github.com/omarshaarawi/gmwiki/internal/models"
	"github.com/omarshaarawi/gmwiki/internal/view"
)

type playerListResponse struct {
	Items       []models.PlayerSummary `json:"items"`
	Summary     view.Summary           `json:"summary"`
	Suggestions []string               `json:"suggestions"`
}

type playerResponse struct {
	Profile *models.PlayerProfile `json:"profile"`
	Stats   *models.PlayerStats   `json:"stats"`
	Elapsed string                `json:"elapsed,omitempty"`
}

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseListQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	lv := view.NewListView(h.dir)
	if err := q.apply(lv); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	lv.Load(r.Context())

	suggestions := lv.Suggestions(suggestionLimit)
	if suggestions == nil {
		suggestions = []string{}
	}
	writeJSON(w, http.StatusOK, playerListResponse{
		Items:       lv.Displayed(),
		Summary:     lv.Summary(),
		Suggestions: suggestions,
	})
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	username, err := usernameParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pv := view.NewProfileView(h.dir)
	defer pv.Close()

	if err := pv.Load(r.Context(), username); err != nil {
		writeError(w, http.StatusBadGateway, "failed to fetch player")
		return
	}
	profile := pv.Profile()
	if profile == nil {
		writeError(w, http.StatusNotFound, "player not found")
		return
	}

	writeJSON(w, http.StatusOK, playerResponse{
		Profile: profile,
		Stats:   pv.Stats(),
		Elapsed: pv.Elapsed(),
	})
}
