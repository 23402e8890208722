package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/rubiojr/explore/pkg/controller"
	"github.com/rubiojr/explore/pkg/explore"
	"github.com/rubiojr/explore/pkg/page"
	"github.com/rubiojr/explore/pkg/render"
	"github.com/rubiojr/explore/pkg/version"
)

const maxCriteriaBytes = 64 << 10

// pageFields are the form controls read from the page URL, in the order they
// are applied.
var pageFields = []controller.Field{
	controller.FieldAuthor,
	controller.FieldDescription,
	controller.FieldTags,
	controller.FieldCategory,
	controller.FieldSort,
}

// HandlePage renders the explore page with the results for the filters in the
// URL. Badge links carry an action and value parameter named like the
// data-action and data-value attributes of the card.
func (s *Server) HandlePage(w http.ResponseWriter, r *http.Request) {
	cards, categories := s.settings()
	token := sessionToken(w, r)

	ctrl := controller.New(page.NewFilters(categories), page.NewView(), s.searcher)
	pending := s.pageSearch(r.Context(), ctrl, r.URL.Query())
	ctrl.Apply(pending.Run())

	data := render.PageData{
		Title:    s.title,
		Endpoint: s.endpoint,
		Token:    token,
		Filters:  ctrl.Filters(),
		Results:  ctrl.View().Snapshot(),
		Painted:  true,
		Version:  version.APIVersion(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.ExplorePage(data, cards).Render(r.Context(), w); err != nil {
		s.log.Errorf("rendering explore page: %v", err)
	}
}

// pageSearch replays the URL parameters as page actions and returns the
// search for the resulting filters. Rejected values are logged by the
// controller and leave the control unchanged.
func (s *Server) pageSearch(ctx context.Context, ctrl *controller.Controller, params url.Values) controller.Pending {
	pending := ctrl.Load(ctx, params)
	try := func(a controller.Action) {
		if p, err := ctrl.Dispatch(ctx, a); err == nil {
			pending = p
		}
	}

	for _, f := range pageFields {
		if vs, ok := params[string(f)]; ok && len(vs) > 0 {
			try(controller.Input(f, vs[0]))
		}
	}
	if name := params.Get("action"); name != "" {
		kind, err := controller.ParseActionKind(name)
		if err != nil {
			s.log.Warnf("page action: %v", err)
		} else {
			try(controller.Action{
				Kind:  kind,
				Field: controller.Field(params.Get("field")),
				Value: params.Get("value"),
			})
		}
	}
	return pending
}

// HandleSearch answers the page's JSON search request.
func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if !validToken(r) {
		s.writeError(w, http.StatusForbidden, "Forbidden", "missing or invalid CSRF token")
		return
	}

	var c explore.Criteria
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCriteriaBytes))
	if err := dec.Decode(&c); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid criteria", err.Error())
		return
	}
	c = c.Normalize()
	sort, err := explore.ParseSortOrder(string(c.Sorting))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid criteria", err.Error())
		return
	}
	c.Sorting = sort

	items, err := s.searcher.Search(r.Context(), c)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.log.Errorf("search failed: %v", err)
		s.writeError(w, http.StatusInternalServerError, "Search failed", "could not search datasets")
		return
	}
	if items == nil {
		items = []explore.Item{}
	}
	s.writeJSON(w, http.StatusOK, items)
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   version.APIVersion(),
	}

	s.writeJSON(w, http.StatusOK, health)
}
