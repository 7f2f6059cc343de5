package mockapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zjrosen/signup/internal/log"
	"github.com/zjrosen/signup/internal/registration"
)

// Options tunes the handler.
type Options struct {
	// FailDeletes answers every delete with 500 Internal Server Error.
	FailDeletes bool
}

type handler struct {
	store *Store
	opts  Options
}

// Handler serves store at
//
//	GET    /{tenant}/register
//	POST   /{tenant}/register
//	DELETE /{tenant}/register/{id}
func Handler(store *Store, opts Options) http.Handler {
	h := &handler{store: store, opts: opts}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Route("/{tenant}/register", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Delete("/{id}", h.delete)
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusMethodNotAllowed)
	})
	return r
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.List(chi.URLParam(r, "tenant")))
}

func (h *handler) create(w http.ResponseWriter, r *http.Request) {
	var in registration.Registration
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		log.Warn(log.CatMock, "invalid create body", "error", err)
		writeStatus(w, http.StatusBadRequest)
		return
	}

	tenant := chi.URLParam(r, "tenant")
	created := h.store.Add(tenant, in)
	log.Info(log.CatMock, "registration created", "tenant", tenant, "id", created.ID)

	writeJSON(w, http.StatusCreated, registration.Ack{
		Message: "Registration for " + created.Username + " received.",
	})
}

func (h *handler) delete(w http.ResponseWriter, r *http.Request) {
	if h.opts.FailDeletes {
		writeStatus(w, http.StatusInternalServerError)
		return
	}

	tenant, id := chi.URLParam(r, "tenant"), chi.URLParam(r, "id")
	deleted, err := h.store.Delete(tenant, id)
	if errors.Is(err, ErrNotFound) {
		writeStatus(w, http.StatusNotFound)
		return
	}
	log.Info(log.CatMock, "registration deleted", "tenant", tenant, "id", id)
	writeJSON(w, http.StatusOK, deleted)
}

// writeStatus answers with the bare status text as a JSON string, the way
// mockapi.io reports errors.
func writeStatus(w http.ResponseWriter, code int) {
	writeJSON(w, code, http.StatusText(code))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.ErrorErr(log.CatMock, "encode response", err)
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug(log.CatMock, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}
