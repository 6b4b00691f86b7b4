package routing

import (
	"github.com/songgao/wgroutes/config"
	"github.com/songgao/wgroutes/sys"
)

// MutationOp is a single route add or delete.
type MutationOp struct {
	Action Action
	Route  RouteSpec
}

// Command returns the route tool invocation performing op.
func (op MutationOp) Command() sys.Command {
	return sys.Command{
		Name: "route",
		Args: []string{op.Action.String(), op.Route.target(), op.Route.Gateway},
	}
}

func (op MutationOp) String() string {
	return op.Action.String() + " " + op.Route.String()
}

// Plan returns the operations for d, one per managed route in the order
// given by Routes. The operations are independent of each other.
func Plan(d Direction, cfg config.Config) []MutationOp {
	action := Add
	if d == Disengage {
		action = Delete
	}
	routes := Routes(cfg)
	ops := make([]MutationOp, 0, len(routes))
	for _, r := range routes {
		ops = append(ops, MutationOp{Action: action, Route: r})
	}
	return ops
}
