package handler

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/omarshaarawi/gmwiki/internal/view"
)

type listPageData struct {
	Query       string
	Sort        view.SortField
	Dir         view.SortDirection
	Cards       []view.Card
	Summary     view.Summary
	Suggestions []string
	SortFields  []sortOption
}

type sortOption struct {
	Field string
	Label string
}

var sortFields = []sortOption{
	{Field: string(view.SortByUsername), Label: "Username"},
	{Field: string(view.SortByDisplayName), Label: "Name"},
	{Field: string(view.SortByCountryName), Label: "Country"},
	{Field: string(view.SortByFollowerCount), Label: "Followers"},
}

func (h *Handler) ListPage(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseListQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	lv := view.NewListView(h.dir)
	if err := q.apply(lv); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	lv.Load(r.Context())

	h.render(w, http.StatusOK, "list.html", listPageData{
		Query:       lv.SearchTerm,
		Sort:        lv.SortField,
		Dir:         lv.SortDirection,
		Cards:       lv.Cards(),
		Summary:     lv.Summary(),
		Suggestions: lv.Suggestions(suggestionLimit),
		SortFields:  sortFields,
	})
}

func (h *Handler) ProfilePage(w http.ResponseWriter, r *http.Request) {
	username, err := usernameParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	pv := view.NewProfileView(h.dir)
	defer pv.Close()

	status := http.StatusOK
	if err := pv.Load(r.Context(), username); err != nil {
		status = http.StatusBadGateway
	} else if pv.Profile() == nil {
		status = http.StatusNotFound
	}

	h.render(w, status, "profile.html", pv.Page())
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.pages.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("Error rendering page", "template", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Debug("Error writing page", "template", name, "error", err)
	}
}
