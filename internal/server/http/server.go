package httpserver

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/engels74/soyuznikrr/internal/metrics"
	"github.com/engels74/soyuznikrr/internal/runtime"
	"github.com/engels74/soyuznikrr/internal/server/http/controllers"
	logssvc "github.com/engels74/soyuznikrr/internal/services/logs"
)

type Server struct {
	rt  *runtime.Runtime
	srv *http.Server
	lis net.Listener
}

// New builds the HTTP server and registers all routes.
func New(rt *runtime.Runtime, svc *logssvc.Service, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(cors)

	controllers.NewLogsController(rt, svc, logger).RegisterRoutes(r)
	controllers.NewGeneralController(rt).RegisterRoutes(r)
	r.Handle("/metrics", metrics.Handler())

	return &Server{rt: rt, srv: &http.Server{Handler: r}}
}

// ListenAndServe serves until ctx is cancelled, then shuts down
// gracefully. Streaming connections are closed by the shutdown context.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	// Per-request base context so in-flight streams observe shutdown.
	s.srv.BaseContext = func(net.Listener) context.Context { return ctx }
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(cctx)
		return nil
	case err := <-errCh:
		return err
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

func (s *Server) Close() {
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
