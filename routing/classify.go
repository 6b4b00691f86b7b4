package routing

import (
	"fmt"
	"regexp"
	"strings"
)

// Classification is the interpretation of a route command's result.
type Classification int

const (
	// Applied means the routing table was changed.
	Applied Classification = iota
	// AlreadyPresent means an add found the route in place.
	AlreadyPresent
	// AlreadyAbsent means a delete found nothing to remove.
	AlreadyAbsent
	// Failed means the route tool rejected the change.
	Failed
)

func (c Classification) String() string {
	switch c {
	case Applied:
		return "applied"
	case AlreadyPresent:
		return "already present"
	case AlreadyAbsent:
		return "already absent"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Classification(%d)", int(c))
	}
}

// OK reports whether the routing table is in the requested state.
func (c Classification) OK() bool {
	return c == Applied || c == AlreadyPresent || c == AlreadyAbsent
}

/* The BSD route tool reports these with exit status 0:

# route add 0.0.0.0/1 10.111.55.31
route: writing to routing socket: File exists
add net 0.0.0.0: gateway 10.111.55.31: File exists

# route delete 0.0.0.0/1 10.111.55.31
route: writing to routing socket: not in table
delete net 0.0.0.0: gateway 10.111.55.31: not in table

*/

var (
	addExistsMarkers     = []string{"File exists"}
	deleteMissingMarkers = []string{"not in table", "No such process"}
)

var reRouteEcho = regexp.MustCompile(`^(?:add|delete|change) (?:net|host) \S+: gateway \S+$`)

func containsAny(lines []string, markers []string) bool {
	for _, line := range lines {
		for _, m := range markers {
			if strings.Contains(line, m) {
				return true
			}
		}
	}
	return false
}

// Classify interprets the exit code and output of a route add or delete.
// The exit code alone is not trusted: the output is checked for the
// idempotent "already there" and "not there" messages first, and an exit
// code of 0 only counts as Applied if every line is the tool's success echo.
func Classify(action Action, exitCode int, lines []string) Classification {
	switch action {
	case Add:
		if containsAny(lines, addExistsMarkers) {
			return AlreadyPresent
		}
	case Delete:
		if containsAny(lines, deleteMissingMarkers) {
			return AlreadyAbsent
		}
	}
	if exitCode != 0 {
		return Failed
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" && !reRouteEcho.MatchString(line) {
			return Failed
		}
	}
	return Applied
}
