package routing

import (
	"github.com/songgao/wgroutes/config"
	"github.com/songgao/wgroutes/sys"
	"go.uber.org/zap"
)

// Status reads the live routing table and reports which managed routes for
// cfg are present. It never changes the table.
func Status(logger *zap.Logger, runner sys.Runner, cfg config.Config) (sys.Snapshot, error) {
	logger.Debug("+ Status")
	defer logger.Debug("- Status")

	lines, err := sys.ReadTable(runner)
	if err != nil {
		return sys.Snapshot{}, err
	}
	return sys.SnapshotRelevant(lines, cfg.WGClient, cfg.WGServer, cfg.DefaultGW), nil
}
