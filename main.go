package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const version = "0.1"

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	return cfg.Build()
}

func main() {
	pflag.Parse()

	if *fVersion {
		fmt.Println("wgroutes-" + version)
		return
	}

	logger, err := newLogger(*fVerbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating logger error: %v\n", err)
		os.Exit(1)
	}

	result := run(logger, os.Stdout, pflag.Args())
	logger.Sugar().Debugf("config: %s; routes: %s", result.config, result.routes)
	_ = logger.Sync()
	if result.failed() {
		os.Exit(1)
	}
}
