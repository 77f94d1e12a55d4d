package connectivity

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthProbe asks a gRPC health service whether the backend is SERVING.
type HealthProbe struct {
	conn    *grpc.ClientConn
	client  healthpb.HealthClient
	service string
}

// NewHealthProbe dials addr lazily; no traffic is sent until the first Ping.
func NewHealthProbe(addr, service string, opts ...grpc.DialOption) (*HealthProbe, error) {
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("health probe dial %s: %w", addr, err)
	}
	return &HealthProbe{conn: conn, client: healthpb.NewHealthClient(conn), service: service}, nil
}

func (p *HealthProbe) Ping(ctx context.Context) error {
	resp, err := p.client.Check(ctx, &healthpb.HealthCheckRequest{Service: p.service})
	if err != nil {
		return err
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("backend not serving: %s", resp.GetStatus())
	}
	return nil
}

func (p *HealthProbe) Close() error {
	return p.conn.Close()
}
