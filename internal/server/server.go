package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"time"

	relay "github.com/danilofalcao/llama-relay/internal/api/relay/v1"
	"github.com/danilofalcao/llama-relay/internal/backend"
	"github.com/danilofalcao/llama-relay/internal/backend/util"
	"github.com/danilofalcao/llama-relay/internal/server/logger"
	"github.com/danilofalcao/llama-relay/internal/server/middleware"
	logutils "github.com/danilofalcao/llama-relay/internal/utils/logger"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

const (
	// LivenessMessage is the body served on GET /
	LivenessMessage = "LLaMA.js Backend is running"
	// UpstreamErrorMessage is the only error clients see when the upstream call fails
	UpstreamErrorMessage = "LLaMA server error"
)

// Options configures the server
type Options struct {
	Host     string
	Port     string
	Backend  backend.Backend
	LogLevel string
	LogFile  string
	// LogSink replaces the sink built from LogFile when set.
	LogSink *zap.Logger
	// Timeout is parsed with time.ParseDuration. Empty or zero disables the
	// per-request deadline.
	Timeout string
	ExitCh  chan string
}

// Server represents the relay server
type Server struct {
	ctx     context.Context
	lgr     *logger.Logger
	host    string
	port    string
	backend backend.Backend
	timeout time.Duration
	srv     *http.Server
}

// New creates a new server instance. Cancelling ctx does not cancel requests
// in flight; use Shutdown to stop the server.
func New(ctx context.Context, opts Options) (*Server, error) {
	sink := opts.LogSink
	if sink == nil {
		sink = logger.NewSink(opts.LogFile)
	}
	// set up the server's logger
	lgr := logger.New(
		"server",
		logger.LevelFromString(opts.LogLevel),
		opts.ExitCh,
		sink,
	)
	ctx = logutils.ContextWithLogger(context.WithoutCancel(ctx), lgr)

	if opts.Port == "" {
		return nil, fmt.Errorf("port is required")
	}
	if opts.Backend == nil {
		return nil, fmt.Errorf("backend is required")
	}

	var timeout time.Duration
	if opts.Timeout != "" {
		var err error
		timeout, err = time.ParseDuration(opts.Timeout)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid timeout %q", opts.Timeout)
		}
	}

	s := &Server{
		ctx:     ctx,
		lgr:     lgr,
		host:    opts.Host,
		port:    opts.Port,
		backend: opts.Backend,
		timeout: timeout,
	}

	s.srv = &http.Server{
		Addr:        s.Addr(),
		Handler:     s.Handler(),
		BaseContext: func(l net.Listener) context.Context { return s.ctx },
	}

	// Enable HTTP/2 support
	if err := http2.ConfigureServer(s.srv, nil); err != nil {
		return nil, fmt.Errorf("error configuring HTTP/2: %w", err)
	}

	return s, nil
}

// Logger returns the server's logger. Its Fatal methods feed Options.ExitCh.
func (s *Server) Logger() *logger.Logger {
	return s.lgr
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Register routes
	mux.HandleFunc("/{$}", s.handleRoot)
	mux.HandleFunc("/chat", s.handleChat)

	return middleware.Wrap(s.ctx, mux, middleware.Params{
		Timeout: s.timeout,
	})
}

// Addr is the address the server listens on
func (s *Server) Addr() string {
	return net.JoinHostPort(s.host, s.port)
}

// Start listens on Addr and serves until Shutdown
func (s *Server) Start() error {
	l, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return errors.Wrapf(err, "error listening on %s", s.Addr())
	}
	return s.Serve(l)
}

// Serve serves requests on l until Shutdown. It returns http.ErrServerClosed
// after a clean shutdown.
func (s *Server) Serve(l net.Listener) error {
	s.lgr.Infof(s.ctx, "Starting server on %s, relaying to %s", l.Addr(), s.backend.Name())
	return s.srv.Serve(l)
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lgr := logutils.FromContext(ctx)
	// Validate request method
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		lgr.Infof(ctx, "Invalid method %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := io.WriteString(w, LivenessMessage); err != nil {
		err = errors.Wrap(err, "error writing liveness response")
		lgr.Error(ctx, err.Error())
	}
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lgr := logutils.FromContext(ctx)
	// Validate request method
	if r.Method != http.MethodPost {
		lgr.Infof(ctx, "Invalid method %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, err := parseChatRequest(r)
	if err != nil {
		err = errors.Wrap(err, "error parsing request")
		lgr.Error(ctx, err.Error())
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	text, err := s.backend.Generate(ctx, req)
	if err != nil {
		lgr.Error(ctx, err.Error())
		s.writeJSON(ctx, w, http.StatusInternalServerError, relay.ErrorResponse{Error: UpstreamErrorMessage})
		return
	}

	s.writeJSON(ctx, w, http.StatusOK, relay.ChatResponse{Response: text})
}

func (s *Server) writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	if err := util.WriteJSON(w, status, v); err != nil {
		err = errors.Wrap(err, "error encoding JSON response on the wire")
		logutils.FromContext(ctx).Error(ctx, err.Error())
	}
}

// parseChatRequest reads the body as JSON only when it is labelled
// application/json. Anything else, an empty body, or a top-level array yields
// a request without a prompt. The body must hold exactly one JSON value.
func parseChatRequest(r *http.Request) (*relay.ChatRequest, error) {
	req := &relay.ChatRequest{}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return req, nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, errors.Wrap(err, "error reading body")
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return req, nil
	}
	if body[0] == '[' {
		if !json.Valid(body) {
			return nil, errors.New("invalid JSON array")
		}
		return req, nil
	}

	if err := json.Unmarshal(body, req); err != nil {
		return nil, err
	}
	return req, nil
}
