package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kilianp07/fleetsim/core/model"
	"github.com/kilianp07/fleetsim/core/transport"
	"github.com/kilianp07/fleetsim/infra/logger"
	"github.com/kilianp07/fleetsim/internal/registry"
)

// Manager is the part of the fleet manager exposed to observers.
type Manager interface {
	CreateVehicle() (string, error)
	ListVehicles() []string
	ListObservers() []string
	RegisterObserver(o transport.Observer) registry.Key
	Control(ctx context.Context, vehicleID string, cmd model.Command) *transport.Future
}

// Server accepts observer WebSocket connections and serves the manager
// operations over JSON-RPC.
type Server struct {
	cfg      Config
	mgr      Manager
	log      logger.Logger
	upgrader websocket.Upgrader
	seq      atomic.Uint64
	mounts   []func(*http.ServeMux)
}

// NewServer returns a gateway for mgr.
func NewServer(cfg Config, mgr Manager, log logger.Logger) *Server {
	cfg.SetDefaults()
	s := &Server{cfg: cfg, mgr: mgr, log: log}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.cfg.AllowedOrigins) == 0 {
		return true
	}
	return slices.Contains(s.cfg.AllowedOrigins, r.Header.Get("Origin"))
}

// Mount adds routes served next to the gateway. It must be called before
// Handler or Run.
func (s *Server) Mount(register func(mux *http.ServeMux)) {
	s.mounts = append(s.mounts, register)
}

// Handler returns the HTTP handler serving the gateway path and every
// mounted route.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.cfg.Path, s.serveWS)
	for _, register := range s.mounts {
		register(mux)
	}
	return mux
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.Addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("ws server shutdown: %v", err)
		}
	}()
	s.log.Infof("observer gateway listening on %s%s", s.cfg.Addr, s.cfg.Path)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	wsConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnf("websocket upgrade from %s: %v", r.RemoteAddr, err)
		return
	}
	c := newConn(wsConn, fmt.Sprintf("ws://%s#%d", r.RemoteAddr, s.seq.Add(1)), s.cfg.WriteTimeout())
	defer c.close()
	wsConn.SetReadLimit(s.cfg.ReadLimitBytes)
	s.log.Debugf("observer connected: %s", c.Endpoint())
	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warnf("read from %s: %v", c.Endpoint(), err)
			}
			return
		}
		var req Request
		if err := json.Unmarshal(data, &req); err != nil {
			s.reply(c, failure(nil, CodeParseError, err.Error()))
			continue
		}
		resp := s.dispatch(r.Context(), c, req)
		if len(req.ID) == 0 {
			continue
		}
		s.reply(c, resp)
	}
}

func (s *Server) reply(c *conn, resp Response) {
	if err := c.write(context.Background(), resp); err != nil {
		s.log.Warnf("reply to %s: %v", c.Endpoint(), err)
	}
}

// dispatch runs one request against the manager.
func (s *Server) dispatch(ctx context.Context, c *conn, req Request) Response {
	switch req.Method {
	case MethodRegisterObserver, MethodRegisterUI:
		s.mgr.RegisterObserver(c)
		return result(req.ID, map[string]string{"endpoint": c.Endpoint()})
	case MethodCreateVehicle:
		id, err := s.mgr.CreateVehicle()
		if err != nil {
			s.log.Errorf("create vehicle: %v", err)
			return failure(req.ID, CodeServerError, err.Error())
		}
		return result(req.ID, map[string]string{"id": id})
	case MethodListVehicles:
		return result(req.ID, s.mgr.ListVehicles())
	case MethodListObservers:
		return result(req.ID, s.mgr.ListObservers())
	case MethodControl:
		var p ControlParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return failure(req.ID, CodeInvalidParams, err.Error())
		}
		if p.ID == "" || p.Method == "" {
			return failure(req.ID, CodeInvalidParams, "id and method are required")
		}
		s.mgr.Control(ctx, p.ID, model.Command{Method: p.Method, Params: p.Params})
		return result(req.ID, "accepted")
	default:
		return failure(req.ID, CodeMethodNotFound, fmt.Sprintf("method %q not found", req.Method))
	}
}
