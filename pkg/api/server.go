package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/klauspost/compress/gzhttp"

	"github.com/rubiojr/explore/pkg/controller"
	"github.com/rubiojr/explore/pkg/explore"
	"github.com/rubiojr/explore/pkg/log"
	"github.com/rubiojr/explore/pkg/page"
	"github.com/rubiojr/explore/pkg/render"
)

// Options configures a Server.
type Options struct {
	// Endpoint serves the page on GET and searches on POST.
	Endpoint   string
	Title      string
	Categories []page.Option
	Location   *time.Location
}

type Server struct {
	searcher controller.Searcher
	endpoint string
	title    string
	log      *log.Logger

	mu         sync.RWMutex
	cards      *render.Cards
	categories []page.Option
}

func NewServer(searcher controller.Searcher, opts Options) (*Server, error) {
	if opts.Endpoint == "" {
		opts.Endpoint = explore.DefaultEndpoint
	}
	if opts.Title == "" {
		opts.Title = "Explore datasets"
	}
	s := &Server{
		searcher: searcher,
		endpoint: opts.Endpoint,
		title:    opts.Title,
		log:      log.ForService("api"),
	}
	if err := s.Reconfigure(opts.Categories, opts.Location); err != nil {
		return nil, err
	}
	return s, nil
}

// Reconfigure swaps the category options and the display time zone. Requests
// in flight keep the settings they started with.
func (s *Server) Reconfigure(categories []page.Option, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	cards, err := render.NewCards(loc, render.Links{Endpoint: s.endpoint})
	if err != nil {
		return fmt.Errorf("building card templates: %w", err)
	}
	if len(categories) == 0 {
		categories = page.DefaultCategories()
	}

	s.mu.Lock()
	s.cards = cards
	s.categories = append([]page.Option(nil), categories...)
	s.mu.Unlock()
	return nil
}

func (s *Server) settings() (*render.Cards, []page.Option) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cards, s.categories
}

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET "+s.endpoint, s.HandlePage)
	mux.HandleFunc("POST "+s.endpoint, s.HandleSearch)
	mux.HandleFunc("GET /health", s.HandleHealth)
}

// Handler returns the routes wrapped with CORS and gzip compression.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return gzhttp.GzipHandler(CorsMiddleware(mux))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("encoding JSON response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, error, message string) {
	response := ErrorResponse{
		Error:   error,
		Message: message,
	}
	s.writeJSON(w, status, response)
}

func CorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+explore.CSRFHeader)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
