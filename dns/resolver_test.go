package dns

import (
	"errors"
	"net"
	"sync"
	"testing"

	"github.com/miekg/dns"
	"go.uber.org/zap/zaptest"
)

type fakeExchanger struct {
	mu      sync.Mutex
	answers map[string][]dns.RR
	rcode   int
	err     error
	queries []string
}

func (f *fakeExchanger) Exchange(m *dns.Msg, server string) (*dns.Msg, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := m.Question[0].Name
	f.queries = append(f.queries, name)
	if f.err != nil {
		return nil, f.err
	}
	res := &dns.Msg{}
	res.SetReply(m)
	res.Rcode = f.rcode
	res.Answer = f.answers[name]
	return res, nil
}

func aRecord(name, ip string) dns.RR {
	return &dns.A{
		Hdr: dns.RR_Header{Name: name, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 60},
		A:   net.ParseIP(ip),
	}
}

func newTestResolver(t *testing.T, ex *fakeExchanger, search ...string) *Resolver {
	return NewResolverWithExchanger(zaptest.NewLogger(t), "127.0.0.1:53", ex, search...)
}

func TestResolveLiteralSkipsLookup(t *testing.T) {
	ex := &fakeExchanger{}
	r := newTestResolver(t, ex)
	for _, in := range []string{"10.111.55.31", "2.2.2.2", "192.168.0.1", "0.0.0.0", "255.255.255.255"} {
		got, err := r.Resolve(in)
		if err != nil {
			t.Fatalf("Resolve(%q): unexpected error: %v", in, err)
		}
		if got != in {
			t.Fatalf("Resolve(%q) = %q, want it unchanged", in, got)
		}
	}
	if len(ex.queries) != 0 {
		t.Fatalf("expected no DNS queries, got %v", ex.queries)
	}
}

func TestResolveHostname(t *testing.T) {
	ex := &fakeExchanger{answers: map[string][]dns.RR{
		"wg.example.com.": {
			&dns.CNAME{
				Hdr:    dns.RR_Header{Name: "wg.example.com.", Rrtype: dns.TypeCNAME, Class: dns.ClassINET},
				Target: "edge.example.com.",
			},
			aRecord("edge.example.com.", "2.2.2.2"),
			aRecord("edge.example.com.", "2.2.2.3"),
		},
	}}
	r := newTestResolver(t, ex)
	got, err := r.Resolve("wg.example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "2.2.2.2" {
		t.Fatalf("got %q, want 2.2.2.2", got)
	}
}

func TestResolveSearchList(t *testing.T) {
	ex := &fakeExchanger{answers: map[string][]dns.RR{
		"wgclientvm.lan.": {aRecord("wgclientvm.lan.", "10.111.55.31")},
	}}
	r := newTestResolver(t, ex, "corp.example", "lan")
	got, err := r.Resolve("wgclientvm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "10.111.55.31" {
		t.Fatalf("got %q, want 10.111.55.31", got)
	}
	want := []string{"wgclientvm.corp.example.", "wgclientvm.lan."}
	if len(ex.queries) != len(want) {
		t.Fatalf("queries = %v, want %v", ex.queries, want)
	}
	for i := range want {
		if ex.queries[i] != want[i] {
			t.Fatalf("queries = %v, want %v", ex.queries, want)
		}
	}
}

func TestResolveSearchListExhausted(t *testing.T) {
	ex := &fakeExchanger{rcode: dns.RcodeNameError}
	_, err := newTestResolver(t, ex, "lan").Resolve("wgclientvm")
	if !errors.Is(err, ErrResolution) {
		t.Fatalf("expected ErrResolution, got %v", err)
	}
	if len(ex.queries) != 2 || ex.queries[1] != "wgclientvm." {
		t.Fatalf("expected search candidate then bare name, got %v", ex.queries)
	}
}

func TestResolveUnderscoreName(t *testing.T) {
	ex := &fakeExchanger{answers: map[string][]dns.RR{
		"my_vm.lan.": {aRecord("my_vm.lan.", "10.0.0.7")},
	}}
	got, err := newTestResolver(t, ex).Resolve("my_vm.lan")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "10.0.0.7" {
		t.Fatalf("got %q, want 10.0.0.7", got)
	}
}

func TestResolveLeadingZeros(t *testing.T) {
	ex := &fakeExchanger{}
	got, err := newTestResolver(t, ex).Resolve("010.001.055.031")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "10.1.55.31" {
		t.Fatalf("got %q, want 10.1.55.31", got)
	}
	if len(ex.queries) != 0 {
		t.Fatalf("expected no DNS queries, got %v", ex.queries)
	}
}

func TestResolveUnresolvable(t *testing.T) {
	tests := []struct {
		name string
		ex   *fakeExchanger
	}{
		{"no answer", &fakeExchanger{}},
		{"nxdomain", &fakeExchanger{rcode: dns.RcodeNameError}},
		{"exchange error", &fakeExchanger{err: errors.New("i/o timeout")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestResolver(t, tt.ex).Resolve("nowhere.invalid")
			if !errors.Is(err, ErrResolution) {
				t.Fatalf("expected ErrResolution, got %v", err)
			}
			var re *ResolutionError
			if !errors.As(err, &re) || re.Host != "nowhere.invalid" {
				t.Fatalf("expected *ResolutionError for nowhere.invalid, got %#v", err)
			}
		})
	}
}

func TestResolveRejectsIPv6(t *testing.T) {
	ex := &fakeExchanger{}
	for _, in := range []string{"::1", "fe80::1%en0", "2001:db8::1"} {
		_, err := newTestResolver(t, ex).Resolve(in)
		if !errors.Is(err, ErrUnsupportedProtocol) {
			t.Fatalf("Resolve(%q): expected ErrUnsupportedProtocol, got %v", in, err)
		}
	}
	if len(ex.queries) != 0 {
		t.Fatalf("expected no DNS queries, got %v", ex.queries)
	}
}

func TestResolveOutOfRangeQuad(t *testing.T) {
	_, err := newTestResolver(t, &fakeExchanger{}).Resolve("256.1.1.1")
	if !errors.Is(err, ErrResolution) {
		t.Fatalf("expected ErrResolution, got %v", err)
	}
}

func TestResolveAll(t *testing.T) {
	ex := &fakeExchanger{answers: map[string][]dns.RR{
		"vm.local.":   {aRecord("vm.local.", "10.111.55.31")},
		"wg.example.": {aRecord("wg.example.", "2.2.2.2")},
	}}
	r := newTestResolver(t, ex)
	got, err := ResolveAll(r, "vm.local", "wg.example", "", "192.168.0.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"10.111.55.31", "2.2.2.2", "", "192.168.0.1"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ResolveAll()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if _, err := ResolveAll(r, "vm.local", "missing.example"); !errors.Is(err, ErrResolution) {
		t.Fatalf("expected ErrResolution, got %v", err)
	}
}

func TestIsDottedQuad(t *testing.T) {
	for in, want := range map[string]bool{
		"10.0.0.1":    true,
		"1.2.3":       false,
		"example.com": false,
		"1.2.3.4.5":   false,
		"256.1.1.1":   false,
		"010.1.1.1":   true,
		"":            false,
	} {
		if got := IsDottedQuad(in); got != want {
			t.Errorf("IsDottedQuad(%q) = %v, want %v", in, got, want)
		}
	}
}
