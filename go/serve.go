package main

import (
	"encoding/json"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/rmmh/blockfaces/go/render"
	rp "github.com/rmmh/blockfaces/go/resourcepack"
)

type server struct {
	resolver *render.Resolver
	faces    []render.Direction
	logger   *slog.Logger
}

func (s *server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Add("Cache-Control", "no-cache")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("writing response", "err", err)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, rp.ErrNotFound), errors.Is(err, rp.ErrNoMatchingVariant):
		return http.StatusNotFound
	case errors.Is(err, rp.ErrUnsupported):
		return http.StatusNotImplemented
	case errors.Is(err, rp.ErrMalformed), errors.Is(err, rp.ErrCycle), errors.Is(err, rp.ErrDimensionMismatch):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.logger.Info("request failed", "path", r.URL.Path, "status", status, "err", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func (s *server) blocksHandler(w http.ResponseWriter, r *http.Request) {
	names, err := s.resolver.BlockNames(r.Context())
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	s.writeJSON(w, names)
}

func (s *server) optionsHandler(w http.ResponseWriter, r *http.Request) {
	opts, err := s.resolver.StateOptions(r.Context(), mux.Vars(r)["block"])
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	s.writeJSON(w, opts)
}

// requestState reads the block state from the query: either one
// state=k=v,k=v parameter or one parameter per key.
func requestState(r *http.Request) (render.VariantState, error) {
	q := r.URL.Query()
	if s := q.Get("state"); s != "" {
		return render.ParseState(s)
	}
	state := render.VariantState{}
	for key, values := range q {
		if key == "faces" {
			continue
		}
		state[key] = values[0]
	}
	return state, nil
}

func (s *server) renderHandler(w http.ResponseWriter, r *http.Request) {
	state, err := requestState(r)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	faces := s.faces
	if f := r.URL.Query().Get("faces"); f != "" {
		if faces, err = render.ParseFaces(f); err != nil {
			s.writeError(w, r, http.StatusBadRequest, err)
			return
		}
	}

	rendered, err := s.resolver.Render(r.Context(), mux.Vars(r)["block"], state, faces)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	s.writeJSON(w, rendered)
}

func (s *server) modelHandler(w http.ResponseWriter, r *http.Request) {
	model, err := s.resolver.Model(r.Context(), mux.Vars(r)["model"])
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	s.writeJSON(w, model)
}

func (s *server) router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/blocks", s.blocksHandler).Methods(http.MethodGet)
	r.HandleFunc("/blocks/{block}/options", s.optionsHandler).Methods(http.MethodGet)
	r.HandleFunc("/blocks/{block}/render", s.renderHandler).Methods(http.MethodGet)
	r.HandleFunc("/models/{model}", s.modelHandler).Methods(http.MethodGet)
	return r
}

func serve(addr string, resolver *render.Resolver, faces []render.Direction) {
	s := &server{
		resolver: resolver,
		faces:    faces,
		logger:   slog.Default(),
	}

	srv := &http.Server{
		Handler:      s.router(),
		Addr:         addr,
		WriteTimeout: 120 * time.Second,
		ReadTimeout:  10 * time.Second,
	}

	log.Println("listening on", srv.Addr)

	log.Fatal(srv.ListenAndServe())
}
