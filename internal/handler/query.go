package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/omarshaarawi/gmwiki/internal/view"
)

// listQuery is the list state carried in the URL of the list page and API.
type listQuery struct {
	Q    string `validate:"max=100"`
	Sort string `validate:"omitempty,oneof=username displayName countryName followerCount"`
	Dir  string `validate:"omitempty,oneof=asc desc"`
}

func (h *Handler) parseListQuery(r *http.Request) (listQuery, error) {
	values := r.URL.Query()
	q := listQuery{
		Q:    values.Get("q"),
		Sort: values.Get("sort"),
		Dir:  values.Get("dir"),
	}
	if err := h.validate.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return q, fmt.Errorf("invalid %s parameter", queryParam(verrs[0].Field()))
		}
		return q, err
	}
	return q, nil
}

// apply copies the query onto a list view. The query must already be validated.
func (q listQuery) apply(v *view.ListView) error {
	field, err := view.ParseSortField(q.Sort)
	if err != nil {
		return err
	}
	dir, err := view.ParseSortDirection(q.Dir)
	if err != nil {
		return err
	}
	v.SearchTerm = q.Q
	v.SortField = field
	v.SortDirection = dir
	return nil
}

// usernameParam returns the decoded username path parameter. chi routes on
// the raw path when the request carries a non-canonical escape, which leaves
// the parameter encoded.
func usernameParam(r *http.Request) (string, error) {
	username := chi.URLParam(r, "username")
	if r.URL.RawPath == "" {
		return username, nil
	}
	decoded, err := url.PathUnescape(username)
	if err != nil {
		return "", errors.New("invalid username")
	}
	return decoded, nil
}

func queryParam(field string) string {
	switch field {
	case "Sort":
		return "sort"
	case "Dir":
		return "dir"
	default:
		return "q"
	}
}

// sortLink builds the list URL that sorts by field, flipping the direction
// when the list is already sorted by it.
func sortLink(q string, current view.SortField, dir view.SortDirection, field string) string {
	next := view.Ascending
	if string(current) == field && dir == view.Ascending {
		next = view.Descending
	}
	values := url.Values{}
	if q != "" {
		values.Set("q", q)
	}
	values.Set("sort", field)
	values.Set("dir", string(next))
	return "/?" + values.Encode()
}
