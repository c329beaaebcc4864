package export

import (
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/kennygrant/sanitize"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"k8s.io/klog/v2"
)

// Availability is the view of a resource the exporter publishes.
type Availability interface {
	Name() string
	Available() bool
}

// Server publishes per-resource availability over the standard gRPC
// health protocol on a unix socket. Consumers watch a resource by
// asking for its name as the service. The empty service name reports
// on the agent itself.
type Server struct {
	socketPath string
	server     *grpc.Server
	health     *health.Server
	statuses   map[string]healthpb.HealthCheckResponse_ServingStatus
}

// NewServer listens on a socket named after the agent in dir. A stale
// socket left behind by an earlier run is replaced.
func NewServer(name, dir string) (*Server, error) {
	socketPath := filepath.Join(dir, sanitize.BaseName(name)+".sock")
	if err := os.Remove(socketPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to remove stale socket %q: %w", socketPath, err)
	}
	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %q: %w", socketPath, err)
	}

	s := &Server{
		socketPath: socketPath,
		server:     grpc.NewServer(),
		health:     health.NewServer(),
		statuses:   map[string]healthpb.HealthCheckResponse_ServingStatus{},
	}
	healthpb.RegisterHealthServer(s.server, s.health)

	go func() {
		if err := s.server.Serve(listener); err != nil {
			klog.Errorf("Availability server failed: %v", err)
		}
	}()
	klog.Infof("Publishing availability on %s", socketPath)

	return s, nil
}

// Sync publishes the current availability of the given resources.
// Unchanged statuses are not pushed again, so watchers only wake up
// on actual transitions.
func (s *Server) Sync(resources []Availability) {
	for _, r := range resources {
		status := healthpb.HealthCheckResponse_NOT_SERVING
		if r.Available() {
			status = healthpb.HealthCheckResponse_SERVING
		}
		if s.statuses[r.Name()] == status {
			continue
		}
		s.statuses[r.Name()] = status
		s.health.SetServingStatus(r.Name(), status)
		klog.Infof("%s: %s", r.Name(), status)
	}
}

// SocketPath returns the path of the listening socket.
func (s *Server) SocketPath() string { return s.socketPath }

// Close stops the server and releases the socket.
func (s *Server) Close() {
	s.server.Stop()
}
