// Package routing switches a host's default IPv4 traffic between its normal
// gateway and a tunnel client by adding or removing three routes: 0.0.0.0/1
// and 128.0.0.0/1 via the tunnel client, which together override the
// default route without removing it, and a host route to the tunnel server
// via the normal gateway so tunnel traffic does not loop into the tunnel.
package routing

import (
	"fmt"
	"strings"

	"github.com/songgao/wgroutes/config"
)

// Direction is a requested transition.
type Direction int

const (
	// Engage sends default traffic through the tunnel client.
	Engage Direction = iota
	// Disengage restores the normal default gateway.
	Disengage
)

func (d Direction) String() string {
	switch d {
	case Engage:
		return "up"
	case Disengage:
		return "down"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Action is the kind of routing table mutation.
type Action int

const (
	Add Action = iota
	Delete
)

func (a Action) String() string {
	switch a {
	case Add:
		return "add"
	case Delete:
		return "delete"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// RouteSpec is one managed route.
type RouteSpec struct {
	Destination string // CIDR
	Gateway     string
}

// Routes returns the three managed routes for cfg, in a fixed order.
func Routes(cfg config.Config) []RouteSpec {
	return []RouteSpec{
		{Destination: "0.0.0.0/1", Gateway: cfg.WGClient},
		{Destination: "128.0.0.0/1", Gateway: cfg.WGClient},
		{Destination: cfg.WGServer + "/32", Gateway: cfg.DefaultGW},
	}
}

// target is the destination as the route tool takes it: host routes are
// given as a bare address.
func (r RouteSpec) target() string {
	return strings.TrimSuffix(r.Destination, "/32")
}

func (r RouteSpec) String() string {
	return r.target() + " -> " + r.Gateway
}
