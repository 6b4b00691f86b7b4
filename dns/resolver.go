package dns

import (
	"errors"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/miekg/dns"
	"go.uber.org/zap"
	"golang.org/x/net/idna"
)

var (
	// ErrResolution is matched by every *ResolutionError.
	ErrResolution = errors.New("resolution failed")
	// ErrUnsupportedProtocol is returned for IPv6 input.
	ErrUnsupportedProtocol = errors.New("IPv6 is not supported")
)

// ResolutionError reports a host that could not be turned into an IPv4
// address.
type ResolutionError struct {
	Host string
	Err  error
}

func (e *ResolutionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("could not resolve %q to an IPv4 address", e.Host)
	}
	return fmt.Sprintf("could not resolve %q to an IPv4 address: %v", e.Host, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

func (e *ResolutionError) Is(target error) bool { return target == ErrResolution }

var reDottedQuad = regexp.MustCompile(`^(?:[0-2]?\d{1,2}\.){3}[0-2]?\d{1,2}$`)

// canonicalQuad returns s with each octet in plain decimal form, so
// "010.1.1.1" becomes "10.1.1.1". ok is false if s is not a dotted quad or
// an octet is above 255.
func canonicalQuad(s string) (quad string, ok bool) {
	if !reDottedQuad.MatchString(s) {
		return "", false
	}
	octets := strings.Split(s, ".")
	for i, o := range octets {
		n, err := strconv.Atoi(o)
		if err != nil || n > 255 {
			return "", false
		}
		octets[i] = strconv.Itoa(n)
	}
	return strings.Join(octets, "."), true
}

// IsDottedQuad reports whether s is a literal IPv4 address in dotted-quad
// notation.
func IsDottedQuad(s string) bool {
	_, ok := canonicalQuad(s)
	return ok
}

// Exchanger sends m to server (host:port) and returns the reply.
type Exchanger interface {
	Exchange(m *dns.Msg, server string) (*dns.Msg, error)
}

type clientExchanger struct {
	client *dns.Client
}

func (c clientExchanger) Exchange(m *dns.Msg, server string) (*dns.Msg, error) {
	res, _, err := c.client.Exchange(m, server)
	return res, err
}

// Resolver turns hostnames into IPv4 addresses by sending A queries to a
// single DNS server. Names are expanded with the resolv.conf search list.
// Literal addresses never reach the network.
type Resolver struct {
	logger    *zap.Logger
	server    string
	search    *dns.ClientConfig
	exchanger Exchanger
}

// NewResolver returns a Resolver that queries dnsServer. A nil dnsServer
// means the first nameserver from /etc/resolv.conf, or 8.8.8.8 if there is
// none.
func NewResolver(logger *zap.Logger, dnsServer net.IP) *Resolver {
	cc, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil {
		logger.Sugar().Debugf("reading /etc/resolv.conf: %v", err)
		cc = &dns.ClientConfig{Ndots: 1}
	}
	return &Resolver{
		logger:    logger,
		server:    serverAddr(logger, cc, dnsServer),
		search:    cc,
		exchanger: clientExchanger{client: &dns.Client{Timeout: 5 * time.Second}},
	}
}

// NewResolverWithExchanger is like NewResolver but sends queries through ex
// and expands names with the given search domains.
func NewResolverWithExchanger(logger *zap.Logger, server string, ex Exchanger, search ...string) *Resolver {
	return &Resolver{
		logger:    logger,
		server:    server,
		search:    &dns.ClientConfig{Search: search, Ndots: 1},
		exchanger: ex,
	}
}

// Resolve returns host in canonical form if it already is a dotted quad, and
// the first A record for it otherwise. Each candidate from the search list is
// tried in turn.
func (r *Resolver) Resolve(host string) (string, error) {
	host = strings.TrimSpace(host)
	if strings.Contains(host, ":") {
		return "", fmt.Errorf("%q: %w", host, ErrUnsupportedProtocol)
	}
	if reDottedQuad.MatchString(host) {
		quad, ok := canonicalQuad(host)
		if !ok {
			return "", &ResolutionError{Host: host, Err: errors.New("octet out of range")}
		}
		return quad, nil
	}
	if host == "" {
		return "", &ResolutionError{Host: host, Err: errors.New("empty host")}
	}

	name := host
	if !isASCII(host) {
		var err error
		if name, err = idna.Lookup.ToASCII(host); err != nil {
			return "", &ResolutionError{Host: host, Err: err}
		}
	}

	var lastErr error
	for _, candidate := range r.search.NameList(name) {
		addr, err := r.lookup(candidate)
		if err == nil {
			r.logger.Sugar().Debugf("resolved %s -> %s", host, addr)
			return addr, nil
		}
		r.logger.Sugar().Debugf("lookup %s: %v", candidate, err)
		lastErr = err
	}
	return "", &ResolutionError{Host: host, Err: lastErr}
}

var errNoAnswer = errors.New("no A record")

func (r *Resolver) lookup(fqdn string) (string, error) {
	m := &dns.Msg{}
	m.SetQuestion(fqdn, dns.TypeA)
	r.logger.Sugar().Debugf("resolving %s via %s", fqdn, r.server)
	res, err := r.exchanger.Exchange(m, r.server)
	if err != nil {
		return "", err
	}
	if res.Rcode != dns.RcodeSuccess {
		return "", fmt.Errorf("server returned %s", dns.RcodeToString[res.Rcode])
	}
	for _, answer := range res.Answer {
		a, ok := answer.(*dns.A)
		if !ok {
			continue
		}
		ip := a.A.To4()
		if ip == nil {
			r.logger.Sugar().Warnf("unexpected non-IPv4 result returned as A record for %s", fqdn)
			continue
		}
		return ip.String(), nil
	}
	return "", errNoAnswer
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func serverAddr(logger *zap.Logger, cc *dns.ClientConfig, dnsServer net.IP) string {
	if dnsServer != nil {
		return net.JoinHostPort(dnsServer.String(), "53")
	}
	if len(cc.Servers) == 0 {
		logger.Sugar().Debugf("no usable nameserver in /etc/resolv.conf; using 8.8.8.8")
		return net.JoinHostPort("8.8.8.8", "53")
	}
	return net.JoinHostPort(cc.Servers[0], cc.Port)
}
