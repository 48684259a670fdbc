package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joestump/bookmarks/internal/auth"
	"github.com/joestump/bookmarks/internal/logger"
	"github.com/joestump/bookmarks/internal/store"
)

// Deps holds all dependencies required to build the router.
type Deps struct {
	BearerAuth    *auth.BearerTokenMiddleware
	BookmarkStore store.BookmarkStoreIface
	Logger        logger.Logger

	// DB and SchemaVersion back /healthz; DB may be nil to disable it.
	DB            Pinger
	SchemaVersion func() (int64, error)

	// Prefix is prepended to every resource path, e.g. "/api".
	Prefix       string
	ClientOrigin string
	// Production hides store fault details from 500 responses.
	Production bool
	// NewID generates bookmark ids; defaults to random UUIDs.
	NewID func() string
}

// NewRouter builds the request pipeline: request id, access log, panic
// recovery, security headers and CORS for every request; then the
// credential gate, JSON content type and bookmark handlers for the resource
// routes. /healthz and /metrics sit outside the credential gate.
func NewRouter(deps Deps) http.Handler {
	faults := &faultResponder{log: deps.Logger, production: deps.Production}
	newID := deps.NewID
	if newID == nil {
		newID = newUUID
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(deps.Logger))
	r.Use(recoverer(faults))
	r.Use(secureHeaders(deps.Production))
	if deps.ClientOrigin != "" {
		r.Use(cors(deps.ClientOrigin))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	if deps.DB != nil {
		r.Get("/healthz", healthz(deps.DB, deps.SchemaVersion, deps.Logger))
	}
	r.Handle("/metrics", promhttp.Handler())

	h := &bookmarksAPIHandler{
		bookmarks: deps.BookmarkStore,
		faults:    faults,
		log:       deps.Logger,
		prefix:    deps.Prefix,
		newID:     newID,
	}
	r.Route(deps.Prefix+"/bookmarks", func(r chi.Router) {
		r.Use(deps.BearerAuth.Authenticate)
		r.Use(jsonContentType)
		registerBookmarkRoutes(r, h)
	})

	return r
}
