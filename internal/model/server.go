package model

import (
	"context"
	"net"
)

// SecurityLayer abstracts how the server's listener is created, so TLS and
// plain deployments share the same lifecycle code.
type SecurityLayer interface {
	Listen(protocol, addr string) (net.Listener, error)
}

// Server is a long-running network server with graceful shutdown.
type Server interface {
	Start(securityLayer SecurityLayer) error
	Stop(ctx context.Context) error
	Address() string
}
