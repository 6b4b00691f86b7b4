package dns

import (
	"golang.org/x/sync/errgroup"
)

// ResolveAll resolves every host with r and returns the addresses in the same
// order. Empty hosts are passed through as empty strings. Lookups run
// concurrently; the first failure is returned.
func ResolveAll(r *Resolver, hosts ...string) ([]string, error) {
	r.logger.Debug("+ ResolveAll")
	defer r.logger.Debug("- ResolveAll")

	addrs := make([]string, len(hosts))
	var g errgroup.Group
	for i, host := range hosts {
		if host == "" {
			continue
		}
		i, host := i, host
		g.Go(func() error {
			addr, err := r.Resolve(host)
			if err != nil {
				return err
			}
			addrs[i] = addr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return addrs, nil
}
