package httpapi

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/nguyentantai21042004/digest-flow/internal/config"
	"github.com/nguyentantai21042004/digest-flow/internal/jobstore"
	"github.com/nguyentantai21042004/digest-flow/internal/logger"
	"github.com/nguyentantai21042004/digest-flow/internal/metrics"
	"github.com/nguyentantai21042004/digest-flow/internal/pipeline"
	"github.com/nguyentantai21042004/digest-flow/internal/summarizer"
	"github.com/nguyentantai21042004/digest-flow/internal/usage"
)

// Server is the thin HTTP surface over the pipeline.
type Server struct {
	cfg        config.ServerConfig
	tempDir    string
	store      jobstore.Store
	pipeline   pipeline.Orchestrator
	summarizer summarizer.Summarizer
	usage      usage.Tracker
	metrics    *metrics.Collector
	logger     logger.Logger
}

// Deps groups the collaborators a Server needs. Usage and Metrics may be nil.
type Deps struct {
	Store      jobstore.Store
	Pipeline   pipeline.Orchestrator
	Summarizer summarizer.Summarizer
	Usage      usage.Tracker
	Metrics    *metrics.Collector
	Logger     logger.Logger
}

// NewServer creates a Server writing uploads under tempDir.
func NewServer(cfg config.ServerConfig, tempDir string, deps Deps) *Server {
	return &Server{
		cfg:        cfg,
		tempDir:    tempDir,
		store:      deps.Store,
		pipeline:   deps.Pipeline,
		summarizer: deps.Summarizer,
		usage:      deps.Usage,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

// Handler returns the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /meeting-summarizer", s.handleUpload)
	mux.HandleFunc("GET /meeting-summarizer/status/{id}", s.handleStatus)
	mux.HandleFunc("POST /summarize", s.handleSummarize)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	// browsers drop credentialed responses carrying a literal "*" origin
	c := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: !allowsAnyOrigin(s.cfg.AllowedOrigins),
	})
	return c.Handler(mux)
}

func allowsAnyOrigin(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
