package model

import (
	"context"
	"net"
)

// SecurityLayer produces the network listener a server serves on, either
// plain TCP or TLS depending on deployment.
type SecurityLayer interface {
	Listen(protocol, addr string) (net.Listener, error)
}

// Server is a startable network server with graceful shutdown.
type Server interface {
	Start(securityLayer SecurityLayer) error
	Stop(ctx context.Context) error
	Address() string
}
