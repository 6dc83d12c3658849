package http

import (
	"net/http"
	"strings"
)

// RouterConfig wires handlers and middleware into the service mux.
type RouterConfig struct {
	Clubs *ClubHandler
	Stats *StatsHandler
	// Admin guards the administrative club mutation endpoints.
	Admin func(http.Handler) http.Handler
	// Middleware wraps the whole router, first entry outermost.
	Middleware []func(http.Handler) http.Handler
}

// NewRouter builds the service's HTTP handler.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	admin := cfg.Admin
	if admin == nil {
		admin = func(next http.Handler) http.Handler { return next }
	}

	if cfg.Clubs != nil {
		createClub := admin(http.HandlerFunc(cfg.Clubs.Create))
		deleteClub := admin(http.HandlerFunc(cfg.Clubs.Delete))

		mux.HandleFunc("/clubs", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Clubs.List(w, r)
			case http.MethodPost:
				createClub.ServeHTTP(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})

		mux.HandleFunc("/clubs/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/clubs/")
			if rest == "" {
				http.NotFound(w, r)
				return
			}

			segments := strings.Split(rest, "/")
			switch len(segments) {
			case 1:
				if r.Method != http.MethodDelete {
					methodNotAllowed(w, http.MethodDelete)
					return
				}
				ctx := ContextWithClubID(r.Context(), segments[0])
				deleteClub.ServeHTTP(w, r.WithContext(ctx))
			case 2:
				if cfg.Stats == nil {
					http.NotFound(w, r)
					return
				}
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				ctx := ContextWithClubName(r.Context(), segments[0])
				r = r.WithContext(ctx)
				switch segments[1] {
				case "stats":
					cfg.Stats.Stats(w, r)
				case "card":
					cfg.Stats.Card(w, r)
				case "ranking":
					cfg.Stats.Ranking(w, r)
				default:
					http.NotFound(w, r)
				}
			default:
				http.NotFound(w, r)
			}
		})
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
