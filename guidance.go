package main

import (
	"fmt"
	"io"

	"github.com/songgao/wgroutes/config"
	"github.com/songgao/wgroutes/sys"
)

func upGuidance(w io.Writer, wgClient string) {
	fmt.Fprintf(w, `
With routing configured to send traffic to the WireGuard client system '%s',
it is usually necessary to add a NAT rule in iptables along with allowing IP
forwarding. The NAT rule should translate incoming IP traffic from this host
to the WireGuard client IP assigned in the 'Address' line of the WireGuard
interface configuration file. The incoming traffic is normally from the IP
assigned to a virtual interface such as 'vnic0'. E.g.:

[wgclientvm]# iptables -t nat -A POSTROUTING -s <vnic0_IP> -j SNAT --to <WG_client_IP>

[wgclientvm]# echo 1 > /proc/sys/net/ipv4/ip_forward
`, wgClient)
}

func downGuidance(w io.Writer, wgClient string) {
	fmt.Fprintf(w, `
Applicable routes have been removed. The corresponding NAT rule and IP
forwarding configuration can be removed from the '%s' WireGuard client system.
`, wgClient)
}

func printStatus(w io.Writer, cfg config.Config, snap sys.Snapshot) {
	for _, r := range []struct {
		status  sys.RouteStatus
		kind    string
		missing string
	}{
		{snap.ClientLow, "client", "0/1 -> " + cfg.WGClient},
		{snap.ClientHigh, "client", "128.0/1 -> " + cfg.WGClient},
		{snap.ServerBypass, "server", cfg.WGServer + " -> " + cfg.DefaultGW},
	} {
		if r.status.Present {
			fmt.Fprintf(w, "WireGuard %s route active: '%s'\n", r.kind, r.status.Row)
		} else {
			fmt.Fprintf(w, "No WireGuard %s route '%s'\n", r.kind, r.missing)
		}
	}
}
