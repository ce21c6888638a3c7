package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/RoanBrand/AlloyCalc/descriptor"
	"github.com/RoanBrand/AlloyCalc/log"
	"github.com/RoanBrand/AlloyCalc/sample"
)

const maxBodyBytes = 8 << 20

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alloycalc_http_requests_total",
		Help: "HTTP requests by endpoint and status code",
	}, []string{"endpoint", "code"})

	compositionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alloycalc_compositions_total",
		Help: "Compositions computed by result",
	}, []string{"result"})

	computeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "alloycalc_compute_duration_seconds",
		Help:    "Time spent computing descriptors per request",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10us to ~2.6s
	}, []string{"endpoint"})
)

// ResultGetter returns the latest spectrometer samples with their descriptors.
type ResultGetter func(ctx context.Context) ([]sample.Computed, error)

// SymbolLister lists the element symbols that can be computed.
type SymbolLister interface {
	Symbols() []string
}

type descriptorRequest struct {
	Elements []string  `json:"elements" validate:"required,min=1,dive,required,alpha,max=3"`
	Ratios   []float64 `json:"ratios" validate:"omitempty,dive,gte=0"`
}

type batchRequest struct {
	Compositions []batchComposition `json:"compositions" validate:"required,min=1,max=10000,dive"`
}

type batchComposition struct {
	Name string `json:"name"`
	descriptorRequest
}

type batchResponseRow struct {
	Name     string             `json:"name,omitempty"`
	Elements []string           `json:"elements"`
	Result   *descriptor.Result `json:"result,omitempty"`
	Error    string             `json:"error,omitempty"`
}

type Server struct {
	engine  *descriptor.Engine
	symbols SymbolLister
	results ResultGetter
	workers int

	validate *validator.Validate
	srv      *http.Server
}

// NewServer returns the API server. results may be nil when no spectrometer
// data source is configured.
func NewServer(engine *descriptor.Engine, symbols SymbolLister, results ResultGetter, workers int) *Server {
	return &Server{
		engine:   engine,
		symbols:  symbols,
		results:  results,
		workers:  workers,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Handler returns the routes of the API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /descriptors", s.instrument("descriptors", s.descriptorEndpoint))
	mux.HandleFunc("POST /descriptors/batch", s.instrument("batch", s.batchEndpoint))
	mux.HandleFunc("GET /elements", s.instrument("elements", s.elementsEndpoint))
	mux.HandleFunc("GET /results", s.instrument("results", s.resultEndpoint))
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

// StartServer serves the API on port until Stop is called.
func (s *Server) StartServer(port string) error {
	s.srv = &http.Server{
		Addr:              ":" + port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Println("Starting AlloyCalc service on port", port)
	if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) descriptorEndpoint(w http.ResponseWriter, r *http.Request) int {
	var req descriptorRequest
	if code, err := s.decode(w, r, &req); err != nil {
		return writeError(w, code, err)
	}

	start := time.Now()
	res, err := s.engine.Compute(req.Elements, req.Ratios)
	computeDuration.WithLabelValues("descriptors").Observe(time.Since(start).Seconds())
	if err != nil {
		compositionsTotal.WithLabelValues("error").Inc()
		log.Debug("composition rejected", "elements", req.Elements, "err", err)
		return writeError(w, errorStatus(err), err)
	}

	compositionsTotal.WithLabelValues("ok").Inc()
	return writeJSON(w, http.StatusOK, res)
}

func (s *Server) batchEndpoint(w http.ResponseWriter, r *http.Request) int {
	var req batchRequest
	if code, err := s.decode(w, r, &req); err != nil {
		return writeError(w, code, err)
	}

	inputs := make([]descriptor.Input, len(req.Compositions))
	for i, c := range req.Compositions {
		inputs[i] = descriptor.Input{Name: c.Name, Symbols: c.Elements, Amounts: c.Ratios}
	}

	start := time.Now()
	results, err := s.engine.ComputeBatch(r.Context(), inputs, s.workers)
	computeDuration.WithLabelValues("batch").Observe(time.Since(start).Seconds())
	if err != nil {
		log.Println("Batch aborted:", err)
		return writeError(w, http.StatusServiceUnavailable, err)
	}

	resp := make([]batchResponseRow, len(results))
	for i, br := range results {
		resp[i] = batchResponseRow{Name: br.Input.Name, Elements: br.Input.Symbols}
		if br.Err != nil {
			resp[i].Error = br.Err.Error()
			compositionsTotal.WithLabelValues("error").Inc()
			continue
		}
		res := br.Result
		resp[i].Result = &res
		compositionsTotal.WithLabelValues("ok").Inc()
	}

	return writeJSON(w, http.StatusOK, resp)
}

func (s *Server) elementsEndpoint(w http.ResponseWriter, r *http.Request) int {
	return writeJSON(w, http.StatusOK, s.symbols.Symbols())
}

func (s *Server) resultEndpoint(w http.ResponseWriter, r *http.Request) int {
	if s.results == nil {
		return writeError(w, http.StatusNotFound, errors.New("no spectrometer data source configured"))
	}

	results, err := s.results(r.Context())
	if err != nil {
		log.Println("Error querying results:", err)
		return writeError(w, http.StatusInternalServerError, errors.New("Error querying results: "+err.Error()))
	}

	return writeJSON(w, http.StatusOK, results)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) (int, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return http.StatusRequestEntityTooLarge, err
		}
		return http.StatusBadRequest, err
	}

	if err := s.validate.Struct(v); err != nil {
		return http.StatusBadRequest, err
	}
	return 0, nil
}

// errorStatus maps engine errors to response codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, descriptor.ErrInvalidComposition):
		return http.StatusBadRequest
	case errors.Is(err, descriptor.ErrLookupNotFound),
		errors.Is(err, descriptor.ErrMissingProperty),
		errors.Is(err, descriptor.ErrDivisionDegenerate):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) int

func (s *Server) instrument(endpoint string, h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := h(w, r)
		requestsTotal.WithLabelValues(endpoint, strconv.Itoa(code)).Inc()
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) int {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Println("Error writing response:", err)
	}
	return code
}

func writeError(w http.ResponseWriter, code int, err error) int {
	return writeJSON(w, code, map[string]string{"error": err.Error()})
}
