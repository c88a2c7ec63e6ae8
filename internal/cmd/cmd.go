package cmd

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danilofalcao/llama-relay/internal/backend"
	"github.com/danilofalcao/llama-relay/internal/backend/ollama"
	"github.com/danilofalcao/llama-relay/internal/server"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

func Run() {
	// Load .env file
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: error loading .env file: %v", err)
	}

	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	// Requests run on the server's own context; the signal context only
	// decides when to start a graceful shutdown.
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	exitCh := make(chan string, 1)

	be, err := getBackend(cfg)
	if err != nil {
		log.Fatal(err)
	}

	svr, err := server.New(context.Background(), server.Options{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Backend:  be,
		LogLevel: cfg.Loglevel,
		LogFile:  cfg.LogFile,
		Timeout:  cfg.Timeout,
		ExitCh:   exitCh,
	})
	if err != nil {
		log.Fatalf("unable to start server %s", err.Error())
	}
	lgr := svr.Logger()
	defer lgr.Sync()

	go func() {
		if err := svr.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lgr.Fatalf(sigCtx, "server stopped: %s", err)
		}
	}()

	select {
	case s := <-exitCh:
		log.Fatalf("killed with message %s", s)
	case <-sigCtx.Done():
		lgr.Info(sigCtx, "shutting down, waiting for in-flight requests")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := svr.Shutdown(shutdownCtx); err != nil {
			log.Fatalf("error shutting down: %s", err)
		}
		lgr.Info(shutdownCtx, "server stopped")
	}
}

func getBackend(cfg config) (backend.Backend, error) {
	var timeout time.Duration
	if cfg.Timeout != "" {
		var err error
		if timeout, err = time.ParseDuration(cfg.Timeout); err != nil {
			return nil, errors.Wrapf(err, "invalid timeout %q", cfg.Timeout)
		}
	}
	return ollama.NewOllamaBackend(ollama.Options{
		Endpoint: cfg.Ollama.Endpoint,
		Model:    cfg.Ollama.Model,
		Timeout:  timeout,
	}), nil
}
