package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	model "github.com/mattijsgietman/Virus-on-a-network/pkg/datamodel"
	"github.com/mattijsgietman/Virus-on-a-network/pkg/epidemic"
	"github.com/mattijsgietman/Virus-on-a-network/pkg/metrics"
)

// the most steps a single /step request may take
const maxStepsPerRequest = 10000

// a webSession holds the one interactive model served over HTTP
type webSession struct {
	mu     sync.Mutex
	params epidemic.Params
	seed   uint64
	model  *epidemic.Model

	metrics *metrics.Registry
	// experiments can be listed only with a working database
	useDB bool
}

func newWebSession(params epidemic.Params, seed uint64, registry *metrics.Registry, useDB bool) (*webSession, error) {
	s := &webSession{metrics: registry, useDB: useDB}
	if err := s.reset(params, seed); err != nil {
		return nil, err
	}
	return s, nil
}

// reset replaces the model; the caller holds mu or owns s exclusively
func (s *webSession) reset(params epidemic.Params, seed uint64) error {
	m, err := epidemic.New(params, model.NewSource(seed), epidemic.WithObserver(s.metrics.ObserveSnapshot))
	if err != nil {
		return err
	}
	s.params, s.seed, s.model = params, seed, m
	s.metrics.SetRunning(m.Running())
	return nil
}

type statusResponse struct {
	Step             int               `json:"step"`
	Running          bool              `json:"running"`
	ModelType        string            `json:"model_type"`
	Seed             uint64            `json:"seed"`
	Params           epidemic.Params   `json:"params"`
	Edges            int               `json:"edges"`
	AvgDegree        float64           `json:"avg_degree"`
	LargestComponent int               `json:"largest_component"`
	Components       int               `json:"components"`
	Snapshot         epidemic.Snapshot `json:"snapshot"`
}

type stepResponse struct {
	Taken    int               `json:"taken"`
	Running  bool              `json:"running"`
	Snapshot epidemic.Snapshot `json:"snapshot"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("cannot encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *webSession) statusHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.model.Graph()
	writeJSON(w, http.StatusOK, statusResponse{
		Step:             s.model.Steps(),
		Running:          s.model.Running(),
		ModelType:        s.model.ModelType().String(),
		Seed:             s.seed,
		Params:           s.params,
		Edges:            g.EdgeCount(),
		AvgDegree:        s.model.AvgDegree(),
		LargestComponent: g.LargestComponent(),
		Components:       g.ComponentCount(),
		Snapshot:         s.model.Snapshot(),
	})
}

// resets the model.  The optional JSON body overlays the current parameters;
// the optional seed query parameter replaces the seed.
func (s *webSession) resetHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	params := s.params
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, fmt.Errorf("bad parameters: %w", err))
			return
		}
	}

	seed := s.seed
	if v := r.URL.Query().Get("seed"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("bad seed %q", v))
			return
		}
		seed = parsed
	}

	if err := s.reset(params, seed); err != nil {
		log.Warnf("reset rejected: %v", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}
	log.Infof("model reset (seed %v)", seed)
	writeJSON(w, http.StatusOK, stepResponse{Running: s.model.Running(), Snapshot: s.model.Snapshot()})
}

// advances the model by n steps (default 1), stopping early once the cutoff
// has ended the run
func (s *webSession) stepHandler(w http.ResponseWriter, r *http.Request) {
	n := 1
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > maxStepsPerRequest {
			writeError(w, http.StatusBadRequest, fmt.Errorf("n must be an integer in [1, %d]", maxStepsPerRequest))
			return
		}
		n = parsed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	taken := 0
	for taken < n && s.model.Running() {
		started := time.Now()
		s.model.Step()
		s.metrics.RecordStep(s.model, time.Since(started))
		taken++
	}
	writeJSON(w, http.StatusOK, stepResponse{Taken: taken, Running: s.model.Running(), Snapshot: s.model.Snapshot()})
}

func (s *webSession) networkHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.model.Portrayal())
}

func (s *webSession) seriesHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.model.History())
}

func (s *webSession) experimentsHandler(w http.ResponseWriter, r *http.Request) {
	if !s.useDB {
		writeError(w, http.StatusServiceUnavailable, errors.New("no database configured"))
		return
	}
	experiments, err := model.GetExperiments()
	if err != nil {
		log.Warnf("cannot list experiments: %v", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, experiments)
}

// statusRecorder remembers the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// instrument counts requests to a route
func (s *webSession) instrument(path string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(sr, r)
		s.metrics.RecordHTTPRequest(r.Method, path, strconv.Itoa(sr.status), time.Since(started))
	}
}

func (s *webSession) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", s.instrument("/status", s.statusHandler))
	mux.HandleFunc("POST /reset", s.instrument("/reset", s.resetHandler))
	mux.HandleFunc("POST /step", s.instrument("/step", s.stepHandler))
	mux.HandleFunc("GET /network", s.instrument("/network", s.networkHandler))
	mux.HandleFunc("GET /series", s.instrument("/series", s.seriesHandler))
	mux.HandleFunc("GET /experiments", s.instrument("/experiments", s.experimentsHandler))
	mux.Handle("GET /metrics", s.metrics.Handler())
	return mux
}

func webService(config *model.Config, useDB bool) error {
	registry := metrics.NewRegistry()
	session, err := newWebSession(config.Simulation.Params, config.TopLevel.Seed, registry, useDB)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%v:%v", config.WebServer.Host, config.WebServer.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           session.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Infof("starting web server on http://%v", addr)
	return srv.ListenAndServe()
}
