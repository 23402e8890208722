package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rubiojr/explore/pkg/client"
	"github.com/rubiojr/explore/pkg/controller"
	"github.com/rubiojr/explore/pkg/explore"
	"github.com/rubiojr/explore/pkg/storage"
)

func setupTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "explore.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })

	base := time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC)
	for _, ds := range []storage.Dataset{
		{ID: "1", DOI: "10.1/a", Title: "Masters finals", Category: "master",
			Tags: []string{"finals"}, CreatedAt: base,
			Authors: []explore.Author{{Name: "Ana"}}},
		{ID: "2", DOI: "10.1/b", Title: "Open rounds", Category: "open",
			Tags: []string{"rounds"}, CreatedAt: base.Add(time.Hour)},
	} {
		if err := store.Insert(context.Background(), ds); err != nil {
			t.Fatal(err)
		}
	}
	return store
}

func setupTestServer(t *testing.T, searcher controller.Searcher) *httptest.Server {
	t.Helper()
	s, err := NewServer(searcher, Options{Location: time.UTC})
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(body)
}

func TestHandlePage(t *testing.T) {
	ts := setupTestServer(t, setupTestStore(t))

	resp, body := get(t, ts.URL+"/explore")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == explore.CSRFCookie {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value == "" {
		t.Fatal("no CSRF cookie set")
	}
	if !strings.Contains(body, `name="csrf_token" value="`+cookie.Value+`"`) {
		t.Error("page token does not match cookie")
	}
	if !strings.Contains(body, "2 datasets found") {
		t.Error("initial search results missing")
	}
}

func TestHandlePageParams(t *testing.T) {
	ts := setupTestServer(t, setupTestStore(t))

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"query seeds title", "?query=finals", []string{`id="filter_title" name="query" placeholder="Search for datasets by title..." value="finals"`, "1 dataset found"}},
		{"legacy query param", "?filter_title=rounds", []string{`value="rounds"`, "1 dataset found"}},
		{"tag badge", "?action=select-tag&value=finals", []string{`value="finals"`, "1 dataset found"}},
		{"category badge", "?action=select-category&value=Open", []string{`<option value="open" selected>Open</option>`, "1 dataset found"}},
		{"unknown category badge", "?action=select-category&value=Nope", []string{`<option value="any" selected>Any</option>`, "2 datasets found"}},
		{"clear", "?query=finals&action=clear", []string{`name="query" placeholder="Search for datasets by title..." value=""`, "2 datasets found"}},
		{"input action", "?action=input&field=author&value=ana", []string{`value="ana"`, "1 dataset found"}},
		{"unknown action", "?query=finals&action=explode", []string{`value="finals"`, "1 dataset found"}},
		{"no match", "?query=zzz", []string{"0 datasets found", `id="results_not_found" style="display: block"`}},
		{"oldest", "?sorting=oldest", []string{`value="oldest" checked`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, body := get(t, ts.URL+"/explore"+tt.query)
			for _, want := range tt.want {
				if !strings.Contains(body, want) {
					t.Errorf("page missing %q", want)
				}
			}
		})
	}
}

func postSearch(t *testing.T, url, token string, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBufferString(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(explore.CSRFHeader, token)
		req.AddCookie(&http.Cookie{Name: explore.CSRFCookie, Value: token})
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHandleSearch(t *testing.T) {
	ts := setupTestServer(t, setupTestStore(t))

	resp := postSearch(t, ts.URL+"/explore", "tok", `{"query":"","author":"","tournament_type":"any","sorting":"oldest"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	items, err := explore.DecodeItems(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[0].ID != "1" {
		t.Fatalf("items = %+v", items)
	}
	if items[0].Category != "Master" || items[0].URL != "/doi/10.1/a/" {
		t.Errorf("item = %+v", items[0])
	}
}

func TestHandleSearchSortingCase(t *testing.T) {
	ts := setupTestServer(t, setupTestStore(t))

	for _, sorting := range []string{"oldest", "OLDEST", " Oldest "} {
		resp := postSearch(t, ts.URL+"/explore", "tok", `{"sorting":"`+sorting+`"}`)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("sorting %q: status = %d", sorting, resp.StatusCode)
		}
		items, err := explore.DecodeItems(resp.Body)
		if err != nil {
			t.Fatal(err)
		}
		if len(items) != 2 || items[0].ID != "1" || items[1].ID != "2" {
			t.Errorf("sorting %q: items = %+v", sorting, items)
		}
	}
}

func TestHandleSearchEmptyIsArray(t *testing.T) {
	ts := setupTestServer(t, setupTestStore(t))

	resp := postSearch(t, ts.URL+"/explore", "tok", `{"query":"nothing matches this"}`)
	body, _ := io.ReadAll(resp.Body)
	if strings.TrimSpace(string(body)) != "[]" {
		t.Errorf("body = %s, want []", body)
	}
}

func TestHandleSearchRejects(t *testing.T) {
	ts := setupTestServer(t, setupTestStore(t))

	if resp := postSearch(t, ts.URL+"/explore", "", `{}`); resp.StatusCode != http.StatusForbidden {
		t.Errorf("no token: status = %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/explore", strings.NewReader(`{}`))
	req.Header.Set(explore.CSRFHeader, "forged")
	req.AddCookie(&http.Cookie{Name: explore.CSRFCookie, Value: "real"})
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("mismatched token: status = %d", resp.StatusCode)
	}

	if resp := postSearch(t, ts.URL+"/explore", "tok", `{"query":`); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad json: status = %d", resp.StatusCode)
	}
	if resp := postSearch(t, ts.URL+"/explore", "tok", `{"sorting":"sideways"}`); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad sorting: status = %d", resp.StatusCode)
	}
}

func TestHandleSearchFailure(t *testing.T) {
	ts := setupTestServer(t, controller.SearcherFunc(func(context.Context, explore.Criteria) ([]explore.Item, error) {
		return nil, errors.New("database is locked")
	}))

	resp := postSearch(t, ts.URL+"/explore", "tok", `{}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var e ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(e.Message, "locked") {
		t.Error("internal error leaked to client")
	}

	_, body := get(t, ts.URL+"/explore")
	if !strings.Contains(body, "0 results found") {
		t.Error("page should show the failure counter")
	}
}

func TestHealth(t *testing.T) {
	ts := setupTestServer(t, setupTestStore(t))

	resp, body := get(t, ts.URL+"/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var h HealthResponse
	if err := json.Unmarshal([]byte(body), &h); err != nil {
		t.Fatal(err)
	}
	if h.Status != "ok" {
		t.Errorf("status = %q", h.Status)
	}
}

func TestCorsPreflight(t *testing.T) {
	ts := setupTestServer(t, setupTestStore(t))

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/explore", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if !strings.Contains(resp.Header.Get("Access-Control-Allow-Headers"), explore.CSRFHeader) {
		t.Errorf("allow headers = %q", resp.Header.Get("Access-Control-Allow-Headers"))
	}
}

func TestClientRoundTrip(t *testing.T) {
	ts := setupTestServer(t, setupTestStore(t))

	c, err := client.New(ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	info, err := c.LoadPage(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(info.Categories) != 4 || info.Sort != explore.SortNewest {
		t.Errorf("page info = %+v", info)
	}

	items, err := c.Search(context.Background(), explore.Criteria{Category: "open"}.Normalize())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].ID != "2" {
		t.Errorf("items = %+v", items)
	}
}
