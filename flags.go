package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

var (
	fConfig    = pflag.StringP("config-file", "c", "", "path or https URL of the config file (default ~/.wg-routes.toml)")
	fSet       = pflag.Bool("set", false, "write --wg-server, --wg-client and (optional) --default-gw to the config file")
	fList      = pflag.Bool("list", false, "print the config file")
	fWGServer  = pflag.String("wg-server", "", "WireGuard upstream server IP or hostname")
	fWGClient  = pflag.String("wg-client", "", "local VM IP or hostname where the WireGuard client is running")
	fDefaultGW = pflag.String("default-gw", "", "IPv4 default gateway (normally parsed from the routing table)")
	fDNSServer = pflag.String("dns-server", "", "DNS server used to resolve hostnames in the config")
	fVerbose   = pflag.BoolP("verbose", "v", false, "verbose logging")
	fVersion   = pflag.BoolP("version", "V", false, "print version and exit")
)

func init() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [up|down|status]\n\n", os.Args[0])
		pflag.PrintDefaults()
	}
}
