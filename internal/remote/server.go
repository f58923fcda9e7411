// Package remote provides the Socket.IO remote control for the playback
// controller.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zishang520/socket.io/servers/socket/v3"
	"github.com/zishang520/socket.io/v3/pkg/types"

	"github.com/llehouerou/reyvr/internal/playback"
	"github.com/llehouerou/reyvr/internal/ringbuf"
)

// Server handles Socket.IO connections and events.
type Server struct {
	io  *socket.Server
	ctl Commander
	st  Status

	mu      sync.RWMutex
	clients map[string]*socket.Socket
}

// NewServer creates a new Socket.IO server driving ctl.
func NewServer(ctl Commander, st Status) *Server {
	opts := socket.DefaultServerOptions()
	opts.SetPingTimeout(20 * time.Second)
	opts.SetPingInterval(25 * time.Second)
	opts.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	s := &Server{
		io:      socket.NewServer(nil, opts),
		ctl:     ctl,
		st:      st,
		clients: make(map[string]*socket.Socket),
	}
	s.setupHandlers()
	return s
}

// setupHandlers registers all Socket.IO event handlers.
func (s *Server) setupHandlers() {
	s.io.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)
		clientID := string(client.Id())

		log.Info().Str("id", clientID).Msg("Client connected")

		s.mu.Lock()
		s.clients[clientID] = client
		s.mu.Unlock()

		client.Emit(pushState, statePayload(s.st.State(), s.st))
		if err := s.ctl.GetTracks(); err != nil {
			log.Error().Err(err).Msg("GetTracks failed")
		}

		client.On("disconnect", func(args ...any) {
			reason := ""
			if len(args) > 0 {
				if r, ok := args[0].(string); ok {
					reason = r
				}
			}
			log.Info().Str("id", clientID).Str("reason", reason).Msg("Client disconnected")

			s.mu.Lock()
			delete(s.clients, clientID)
			s.mu.Unlock()
		})

		client.On(evGetState, func(...any) {
			client.Emit(pushState, statePayload(s.st.State(), s.st))
		})

		for _, event := range inboundEvents {
			if event == evGetState {
				continue
			}
			client.On(event, func(args ...any) {
				log.Debug().Str("id", clientID).Str("event", event).Interface("data", args).Msg("remote command")
				if err := dispatch(s.ctl, s.st, event, args); err != nil {
					log.Warn().Err(err).Str("id", clientID).Msg("remote command rejected")
					client.Emit(pushToast, ToastPayload{Type: "error", Message: err.Error()})
				}
			})
		}
	})
}

// Run broadcasts responses from rx to every client until rx closes or ctx
// is done.
func (s *Server) Run(ctx context.Context, rx *ringbuf.Receiver[playback.Response]) error {
	for {
		r, err := rx.Recv(ctx)
		if errors.Is(err, ringbuf.ErrClosed) {
			return nil
		}
		if err != nil {
			return err
		}
		s.broadcast(r)
	}
}

func (s *Server) broadcast(r playback.Response) {
	event, payload, ok := outbound(r, s.st)
	if !ok {
		return
	}
	s.io.Emit(event, payload)

	if log.Debug().Enabled() && event != pushPosition {
		s.mu.RLock()
		clientCount := len(s.clients)
		s.mu.RUnlock()
		log.Debug().Str("event", event).Int("clients", clientCount).Msg("Broadcast")
	}
}

// Handler returns the HTTP handler serving Socket.IO and /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/socket.io/", s.io.ServeHandler(nil))
	mux.HandleFunc("/health", s.health)
	return mux
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": "ok",
		"state":  s.st.State(),
		"tracks": s.st.Playlist().Len(),
	})
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Remote server shutdown error")
		}
	}()

	log.Info().Str("addr", addr).Msg("Remote control listening")
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close closes the Socket.IO server.
func (s *Server) Close() error {
	s.io.Close(nil)
	return nil
}
