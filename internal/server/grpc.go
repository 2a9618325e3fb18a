package server

import (
	"net"

	"github.com/MKhiriev/go-task-keeper/internal/config"
	taskGRPC "github.com/MKhiriev/go-task-keeper/internal/handler/grpc"
	"github.com/MKhiriev/go-task-keeper/internal/logger"

	"google.golang.org/grpc"
)

// grpcServer is a placeholder for the gRPC transport. The task service is
// currently exposed over HTTP only; the listener is wired but no services are
// registered yet.
type grpcServer struct {
	handler *taskGRPC.Handler

	server          *grpc.Server
	gRPCNetListener net.Listener

	address string
	logger  *logger.Logger
}

func newGRPCServer(handler *taskGRPC.Handler, cfg config.Server, logger *logger.Logger) *grpcServer {
	return &grpcServer{
		handler: handler,
		server:  grpc.NewServer(),
		address: cfg.GRPCAddress,
		logger:  logger,
	}
}

func (g *grpcServer) RunServer() {
	listener, err := net.Listen("tcp", g.address)
	if err != nil {
		g.logger.Err(err).Str("address", g.address).Msg("gRPC server listen")
		return
	}
	g.gRPCNetListener = listener

	if err := g.server.Serve(g.gRPCNetListener); err != nil {
		g.logger.Err(err).Msg("gRPC server Serve")
	}
}

func (g *grpcServer) Shutdown() {
	g.logger.Info().Msg("gRPC server Shutdown")
	g.server.GracefulStop()
}
