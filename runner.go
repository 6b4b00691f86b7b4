package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/songgao/wgroutes/config"
	"github.com/songgao/wgroutes/routing"
	"github.com/songgao/wgroutes/sys"
	"go.uber.org/zap"
)

type options struct {
	configPath string
	set        bool
	list       bool
	file       config.File
	args       []string
}

func flagOptions(args []string) options {
	return options{
		configPath: *fConfig,
		set:        *fSet,
		list:       *fList,
		file: config.File{
			WGClient:  *fWGClient,
			WGServer:  *fWGServer,
			DefaultGW: *fDefaultGW,
			DNSServer: *fDNSServer,
		},
		args: args,
	}
}

type runResult struct {
	config string
	routes string
}

func (r runResult) failed() bool {
	return r.config == "ERR" || r.routes == "ERR"
}

// newRunner is replaced in tests.
var newRunner = func(logger *zap.Logger) sys.Runner {
	return sys.NewExecRunner(logger)
}

func run(logger *zap.Logger, w io.Writer, args []string) runResult {
	return runWith(logger, w, flagOptions(args))
}

func runWith(logger *zap.Logger, w io.Writer, o options) (result runResult) {
	logger.Debug("+ run")
	defer logger.Debug("- run")

	p := o.configPath
	if p == "" {
		var err error
		if p, err = config.DefaultPath(); err != nil {
			logger.Sugar().Errorf("locating config file error: %v", err)
			result.config = "ERR"
			return result
		}
	}

	switch {
	case o.list:
		data, err := config.Display(logger, p)
		if err != nil {
			logger.Sugar().Errorf("%v", err)
			result.config = "ERR"
			return result
		}
		fmt.Fprintf(w, "\nDisplaying config: '%s'\n\n%s\n", p, strings.TrimRight(string(data), "\n"))
		result.config = "LISTED"
		return result
	case o.set:
		if err := writeConfig(p, o.file); err != nil {
			logger.Sugar().Errorf("writing config error: %v", err)
			result.config = "ERR"
			return result
		}
		fmt.Fprintf(w, "Config written to '%s', now 'up|down|status' cmds can be used.\n", p)
		result.config = "WRITTEN"
		return result
	}

	cmd, err := parseCommand(o.args)
	if err != nil {
		logger.Sugar().Errorf("%v", err)
		result.config = "ERR"
		return result
	}

	runner := newRunner(logger)
	cfg, err := config.Load(logger, p, runner)
	if err != nil {
		logger.Sugar().Errorf("loading config error: %v", err)
		result.config = "ERR"
		return result
	}
	result.config = "OK"
	logger.Sugar().Debugf("using config: %s", cfg)

	if cmd == "status" {
		snap, err := routing.Status(logger, runner, cfg)
		if err != nil {
			logger.Sugar().Errorf("reading routing table error: %v", err)
			result.routes = "ERR"
			return result
		}
		printStatus(w, cfg, snap)
		if snap.Engaged() {
			result.routes = "ENGAGED"
		} else {
			result.routes = "NOT ENGAGED"
		}
		return result
	}

	d := routing.Engage
	if cmd == "down" {
		d = routing.Disengage
	}
	results := routing.NewExecutor(logger, runner).Transition(d, cfg)
	if err := routing.Err(results); err != nil {
		logger.Sugar().Errorf("%s error: %v", d, err)
		result.routes = "ERR"
		return result
	}
	result.routes = "UNCHANGED"
	for _, r := range results {
		if r.Classification == routing.Applied {
			result.routes = "CHANGED"
		}
	}

	if d == routing.Engage {
		upGuidance(w, cfg.WGClient)
	} else {
		downGuidance(w, cfg.WGClient)
	}
	return result
}

func parseCommand(args []string) (string, error) {
	switch len(args) {
	case 0:
		return "status", nil
	case 1:
		cmd := strings.ToLower(args[0])
		switch cmd {
		case "up", "down", "status":
			return cmd, nil
		}
		return "", fmt.Errorf("unknown command %q: must be one of up|down|status", args[0])
	default:
		return "", fmt.Errorf("expected at most one command, got %q", args)
	}
}

func writeConfig(p string, f config.File) error {
	if strings.HasPrefix(p, "https://") {
		return errors.New("cannot write config to a URL")
	}
	if f.WGServer == "" {
		return errors.New("specify the WireGuard server IP (or hostname) with --wg-server")
	}
	if f.WGClient == "" {
		return errors.New("specify the local VM IP/hostname where the WireGuard client is running with --wg-client")
	}
	return config.Save(p, f)
}
