package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wfunc/oddroll/broadcast"
	"github.com/wfunc/oddroll/config"
	"github.com/wfunc/oddroll/logger"
	"github.com/wfunc/oddroll/monitor"
	"github.com/wfunc/oddroll/network"
	"github.com/wfunc/oddroll/persistence"
	"github.com/wfunc/oddroll/room"
	oddroll_rpc "github.com/wfunc/oddroll/rpc"
	"github.com/wfunc/oddroll/services"
	"github.com/wfunc/oddroll/session"
	"github.com/wfunc/oddroll/timer"
)

const recordTimeout = 10 * time.Second

type GameServer struct {
	cfg            config.Config
	upgrader       websocket.Upgrader
	registry       *room.Registry
	sessionManager *session.Manager
	broadcaster    broadcast.Broadcaster
	matches        *services.MatchService
	monitor        *monitor.Monitor
	timers         *timer.TimerManager
	rpcServer      *oddroll_rpc.Server
	healthServer   *oddroll_rpc.HealthServer
	httpServer     *http.Server
	recording      sync.WaitGroup
	closing        bool
	mutex          sync.Mutex
	shutdownChan   chan struct{}
	shutdownOnce   sync.Once
}

// NewGameServer wires the gateway. Listeners are opened by Start.
func NewGameServer(cfg config.Config, db persistence.Database, opts room.Options) *GameServer {
	if opts.MaxCapacity == 0 {
		opts.MaxCapacity = cfg.Game.MaxCapacity
	}
	s := &GameServer{
		cfg:            cfg,
		registry:       room.NewRegistry(opts),
		sessionManager: session.NewManager(),
		matches:        services.NewMatchService(db),
		monitor:        monitor.NewMonitor("oddroll"),
		timers:         timer.NewTimerManager(),
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	// 初始化广播器
	s.broadcaster = broadcast.NewRoomBroadcaster(s.registry, s.sessionManager)
	return s
}

// Handler serves the websocket endpoint and the plain HTTP views.
func (s *GameServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/rooms", s.handleRooms)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	return mux
}

func (s *GameServer) Start() error {
	rpcServer, err := oddroll_rpc.NewServer(s.cfg.Server.RPCAddress, oddroll_rpc.NewGameService(s.registry, s.matches))
	if err != nil {
		return err
	}
	healthServer, err := oddroll_rpc.NewHealthServer(s.cfg.Server.GRPCAddress)
	if err != nil {
		rpcServer.Stop()
		return err
	}

	s.mutex.Lock()
	s.rpcServer = rpcServer
	s.healthServer = healthServer
	s.httpServer = &http.Server{Addr: s.cfg.Server.HTTPAddress, Handler: s.Handler()}
	srv := s.httpServer
	s.mutex.Unlock()

	go rpcServer.Start()
	go healthServer.Start()
	s.monitor.StartServer(s.cfg.Server.MetricsAddress)

	sweep := s.cfg.Server.SweepInterval
	s.timers.AddTimer(sweep, sweep, s.reapIdleSessions)

	logger.Log.Infof("Game server listening on %s", s.cfg.Server.HTTPAddress)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops every listener, closes live sessions and waits for pending match records.
func (s *GameServer) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		close(s.shutdownChan)
		s.timers.Stop()

		s.mutex.Lock()
		s.closing = true
		httpServer, rpcServer, healthServer := s.httpServer, s.rpcServer, s.healthServer
		s.mutex.Unlock()

		if healthServer != nil {
			healthServer.Stop()
		}
		if httpServer != nil {
			err = httpServer.Shutdown(ctx)
		}
		if rpcServer != nil {
			rpcServer.Stop()
		}
		for _, sess := range s.sessionManager.All() {
			sess.Close()
		}
		if mErr := s.monitor.Shutdown(ctx); err == nil {
			err = mErr
		}
		s.recording.Wait()
	})
	return err
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(network.NewWSConnection(conn))
}

func (s *GameServer) handleRooms(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.registry.List()); err != nil {
		logger.Log.Errorf("encode room list: %v", err)
	}
}

// handleConnection runs the read loop of one client until it disconnects.
func (s *GameServer) handleConnection(conn network.Connection) {
	sess := session.NewSession(uuid.New().String(), conn)
	s.sessionManager.Add(sess)
	s.monitor.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, session ID: %s", conn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", conn.RemoteAddr(), sess.GetID())
		s.leaveRoom(sess)
		s.sessionManager.Remove(sess.GetID())
		s.monitor.DecOnlinePlayers()
		conn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := conn.ReadPacket()
			if err != nil {
				return
			}
			start := time.Now()
			sess.Touch()
			s.monitor.IncMessagesReceived(network.MsgName(packet.MsgID))
			s.handlePacket(sess, packet)
			s.monitor.ObserveMessageLatency(time.Since(start))
		}
	}
}

// reapIdleSessions closes connections silent for longer than the idle timeout.
// Closing ends the read loop, which runs the normal disconnect path.
func (s *GameServer) reapIdleSessions() {
	cutoff := time.Now().Add(-s.cfg.Server.IdleTimeout)
	for _, sess := range s.sessionManager.IdleSince(cutoff) {
		logger.Log.Infof("Closing idle session %s", sess.GetID())
		if err := sess.Close(); err != nil {
			logger.Log.Warnf("close idle session %s: %v", sess.GetID(), err)
		}
	}
}

// recordMatch stores a finished game in the background, or synchronously once
// Shutdown has begun.
func (s *GameServer) recordMatch(match room.MatchSummary) {
	s.monitor.IncGamesFinished()

	s.mutex.Lock()
	if s.closing {
		s.mutex.Unlock()
		s.storeMatch(match)
		return
	}
	s.recording.Add(1)
	s.mutex.Unlock()

	go func() {
		defer s.recording.Done()
		s.storeMatch(match)
	}()
}

func (s *GameServer) storeMatch(match room.MatchSummary) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if _, err := s.matches.RecordMatch(ctx, match); err != nil {
		logger.Log.Errorf("record match for room %s: %v", match.RoomKey, err)
	}
}

func (s *GameServer) send(sess *session.Session, msgID uint16, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Log.Errorf("encode %s: %v", network.MsgName(msgID), err)
		return
	}
	if err := s.broadcaster.SendToSession(sess.GetID(), msgID, data); err != nil {
		logger.Log.Warnf("send %s to session %s: %v", network.MsgName(msgID), sess.GetID(), err)
	}
}

func (s *GameServer) broadcast(roomKey string, msgID uint16, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Log.Errorf("encode %s: %v", network.MsgName(msgID), err)
		return
	}
	if err := s.broadcaster.BroadcastToRoom(roomKey, msgID, data); err != nil {
		logger.Log.Warnf("broadcast %s to room %s: %v", network.MsgName(msgID), roomKey, err)
	}
}
