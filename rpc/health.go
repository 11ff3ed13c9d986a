package rpc

import (
	"errors"
	"net"

	"github.com/wfunc/oddroll/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthServer answers grpc.health.v1 checks for the game server.
type HealthServer struct {
	listener net.Listener
	grpc     *grpc.Server
	health   *health.Server
}

func NewHealthServer(addr string) (*HealthServer, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	return &HealthServer{listener: listener, grpc: grpcServer, health: healthServer}, nil
}

func (h *HealthServer) Addr() string {
	return h.listener.Addr().String()
}

// Start marks the server SERVING and blocks until Stop.
func (h *HealthServer) Start() {
	h.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	logger.Log.Infof("gRPC health listening on %s", h.Addr())
	if err := h.grpc.Serve(h.listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		logger.Log.Errorf("gRPC health server: %v", err)
	}
}

// Stop reports NOT_SERVING to watchers, then stops the gRPC server.
func (h *HealthServer) Stop() {
	h.health.Shutdown()
	h.grpc.GracefulStop()
}
