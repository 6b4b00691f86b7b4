package sys

import (
	"errors"
	"fmt"
	"strings"

	"github.com/songgao/wgroutes/dns"
)

/* Example output of `netstat -rn` on macOS:

Routing tables

Internet:
Destination        Gateway            Flags        Netif Expire
0/1                10.111.55.31       UGSc         vnic0
default            192.168.0.1        UGSc           en0
2.2.2.2            192.168.0.1        UGHS           en0
127                127.0.0.1          UCS            lo0
128.0/1            10.111.55.31       UGSc         vnic0

Internet6:
Destination                             Gateway                         Flags         Netif Expire
default                                 fe80::%utun0                    UGcIg         utun0

*/

var (
	// ErrGatewayNotFound is returned when the table has no IPv4 default route.
	ErrGatewayNotFound = errors.New("could not parse default gateway from routing table")
	// ErrGatewayFlags is matched by every *GatewayFlagsError.
	ErrGatewayFlags = errors.New("default gateway is missing a required flag")
)

// GatewayFlagsError reports a default route that is not both up and a
// gateway. It can be worked around by setting the gateway explicitly.
type GatewayFlagsError struct {
	Gateway string
	Flags   string
	Missing string
}

func (e *GatewayFlagsError) Error() string {
	return fmt.Sprintf("default gateway %s does not have the '%s' flag (flags %q); set it with --default-gw",
		e.Gateway, e.Missing, e.Flags)
}

func (e *GatewayFlagsError) Is(target error) bool { return target == ErrGatewayFlags }

// NetstatCommand lists the routing table numerically.
var NetstatCommand = Command{Name: "netstat", Args: []string{"-rn"}}

// Entry is one row of the routing table listing.
type Entry struct {
	Destination string
	Gateway     string
	Flags       string
	// Row is the whole line with surrounding whitespace removed.
	Row string
}

// HasFlag reports whether flag is in e's flag column.
func (e Entry) HasFlag(flag string) bool {
	return strings.Contains(e.Flags, flag)
}

// ParseTable splits routing table text into entries. Lines with fewer than
// two columns (titles, blank lines) are dropped; header rows are kept but
// never match a real destination.
func ParseTable(lines []string) []Entry {
	var entries []Entry
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		e := Entry{
			Destination: fields[0],
			Gateway:     fields[1],
			Row:         strings.TrimSpace(line),
		}
		if len(fields) > 2 {
			e.Flags = fields[2]
		}
		entries = append(entries, e)
	}
	return entries
}

// ReadTable runs NetstatCommand through r and returns its output lines.
func ReadTable(r Runner) ([]string, error) {
	out, err := r.Run(NetstatCommand)
	if err != nil {
		return nil, err
	}
	if out.ExitCode != 0 {
		return nil, fmt.Errorf("%q exited with status %d: %s",
			NetstatCommand.String(), out.ExitCode, strings.Join(out.Lines, "\n"))
	}
	return out.Lines, nil
}

// DetectDefaultGateway returns the gateway of the first IPv4 default route
// in lines. The route must carry both the G and U flags.
func DetectDefaultGateway(lines []string) (string, error) {
	for _, e := range ParseTable(lines) {
		if e.Destination != "default" || !dns.IsDottedQuad(e.Gateway) {
			continue
		}
		for _, flag := range []string{"G", "U"} {
			if !e.HasFlag(flag) {
				return "", &GatewayFlagsError{Gateway: e.Gateway, Flags: e.Flags, Missing: flag}
			}
		}
		return e.Gateway, nil
	}
	return "", ErrGatewayNotFound
}

// RouteStatus is one managed route as seen in the live table.
type RouteStatus struct {
	Present bool
	Row     string
}

// Snapshot records which of the three managed routes are in the table.
type Snapshot struct {
	// ClientLow is 0/1 via the tunnel client.
	ClientLow RouteStatus
	// ClientHigh is 128.0/1 via the tunnel client.
	ClientHigh RouteStatus
	// ServerBypass is the tunnel server host route via the default gateway.
	ServerBypass RouteStatus
}

// Engaged reports whether all three managed routes are present.
func (s Snapshot) Engaged() bool {
	return s.ClientLow.Present && s.ClientHigh.Present && s.ServerBypass.Present
}

// SnapshotRelevant scans lines once for the managed routes. A row fills at
// most one slot and the first matching row for a slot is kept.
func SnapshotRelevant(lines []string, client, server, gateway string) Snapshot {
	var s Snapshot
	for _, e := range ParseTable(lines) {
		var slot *RouteStatus
		switch {
		case e.Destination == "0/1" && e.Gateway == client:
			slot = &s.ClientLow
		case e.Destination == "128.0/1" && e.Gateway == client:
			slot = &s.ClientHigh
		case e.Destination == server && e.Gateway == gateway:
			slot = &s.ServerBypass
		default:
			continue
		}
		if !slot.Present {
			*slot = RouteStatus{Present: true, Row: e.Row}
		}
	}
	return s
}
