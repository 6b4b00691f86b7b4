package config

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/pelletier/go-toml"
	"github.com/songgao/wgroutes/dns"
	"github.com/songgao/wgroutes/sys"
	"go.uber.org/zap"
)

// ErrInvalid is returned for configs that are missing a field or carry a
// value that is not an IPv4 address after resolution.
var ErrInvalid = errors.New("invalid config")

// File is the on-disk form of the config. Values may be hostnames.
type File struct {
	WGClient  string `toml:"WGClient" comment:"Local VM IP or hostname where the WireGuard client is running"`
	WGServer  string `toml:"WGServer" comment:"Remote Internet-connected system running WireGuard"`
	DefaultGW string `toml:"DefaultGW,omitempty" comment:"Normally parsed from the routing table; only set to override it"`
	DNSServer string `toml:"DNSServer,omitempty" comment:"DNS server used to resolve hostnames above"`
}

// Config holds the three resolved addresses the routes are built from.
type Config struct {
	WGClient  string
	WGServer  string
	DefaultGW string
}

// Validate checks that every address is a dotted-quad IPv4 address.
func (c Config) Validate() error {
	for _, f := range []struct{ name, value string }{
		{"WGClient", c.WGClient},
		{"WGServer", c.WGServer},
		{"DefaultGW", c.DefaultGW},
	} {
		if f.value == "" {
			return fmt.Errorf("%w: %s missing", ErrInvalid, f.name)
		}
		if !dns.IsDottedQuad(f.value) {
			return fmt.Errorf("%w: %s %q is not an IPv4 address", ErrInvalid, f.name, f.value)
		}
	}
	return nil
}

func (c Config) String() string {
	return fmt.Sprintf("client=%s server=%s gw=%s", c.WGClient, c.WGServer, c.DefaultGW)
}

// Parse decodes TOML config data.
func Parse(data []byte) (File, error) {
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parsing config file error: %w", err)
	}
	if f.WGClient == "" {
		return File{}, fmt.Errorf("%w: WGClient missing", ErrInvalid)
	}
	if f.WGServer == "" {
		return File{}, fmt.Errorf("%w: WGServer missing", ErrInvalid)
	}
	return f, nil
}

// DNSServerIP returns the configured DNS server, or nil if unset.
func (f File) DNSServerIP() (net.IP, error) {
	if f.DNSServer == "" {
		return nil, nil
	}
	ip := net.ParseIP(f.DNSServer)
	if ip == nil {
		return nil, fmt.Errorf("%w: %s is not a valid IP address", ErrInvalid, f.DNSServer)
	}
	return ip, nil
}

// Resolve turns f into a Config. Hostnames are resolved with r; an empty
// DefaultGW is detected from the routing table read through runner.
func Resolve(logger *zap.Logger, f File, r *dns.Resolver, runner sys.Runner) (Config, error) {
	logger.Debug("+ Resolve")
	defer logger.Debug("- Resolve")

	addrs, err := dns.ResolveAll(r, f.WGClient, f.WGServer, f.DefaultGW)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{WGClient: addrs[0], WGServer: addrs[1], DefaultGW: addrs[2]}

	if cfg.DefaultGW == "" {
		lines, err := sys.ReadTable(runner)
		if err != nil {
			return Config{}, err
		}
		gw, err := sys.DetectDefaultGateway(lines)
		if err != nil {
			return Config{}, err
		}
		logger.Sugar().Debugf("detected default gateway %s", gw)
		cfg.DefaultGW = gw
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads the config at p (a filesystem path or an https URL), resolves
// it and validates the result.
func Load(logger *zap.Logger, p string, runner sys.Runner) (Config, error) {
	logger.Debug("+ Load")
	defer logger.Debug("- Load")

	data, err := readConfig(logger, p)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file error: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return Config{}, err
	}
	dnsServer, err := f.DNSServerIP()
	if err != nil {
		return Config{}, err
	}
	if dnsServer == nil {
		logger.Sugar().Debugf("DNSServer missing; using system resolver")
	}
	return Resolve(logger, f, dns.NewResolver(logger, dnsServer), runner)
}

const fileHeader = `#
# Configuration file for wgroutes
#
`

// Save writes f to p, replacing any existing file.
func Save(p string, f File) error {
	data, err := toml.Marshal(f)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	buf.WriteString(fileHeader)
	buf.WriteString("\n")
	buf.Write(data)
	return os.WriteFile(p, buf.Bytes(), 0600)
}
