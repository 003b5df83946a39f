// Package metrics serves the prometheus registry in watch mode.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gramflow/internal/config"
)

type Server struct {
	Logger *slog.Logger
	Config *config.Config

	srv *http.Server
}

func (s *Server) Init(_ context.Context) error {
	s.Logger = s.Logger.With("component", "metrics.Server")

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s.srv = &http.Server{Addr: s.Config.MetricsAddr, Handler: mux}

	return nil
}

func (s *Server) Run(ctx context.Context) error {
	s.Logger.Info("serving metrics", "addr", s.srv.Addr)

	go func() {
		<-ctx.Done()
		s.srv.Shutdown(context.Background()) //nolint:errcheck
	}()

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
