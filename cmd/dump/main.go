package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/nspcc-dev/voting-program/config"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "Path to the YAML configuration file")
	label := flag.String("label", "", "Label of the ledger environment (e.g. 'devnet'), overrides configuration")
	outDir := flag.String("out", "", "Directory to store the dump in, overrides configuration")

	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if *configPath == "" {
		log.Fatal("missing configuration file")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}

	if *label != "" {
		cfg.Dump.Label = *label
	}
	if *outDir != "" {
		cfg.Dump.Directory = *outDir
	}

	if cfg.Dump.Label == "" {
		log.Fatal("missing ledger label")
	}

	err = os.MkdirAll(cfg.Dump.Directory, 0700)
	if err != nil {
		log.Fatal("failed to create dump directory", zap.Error(err))
	}

	id, err := _dump(cfg, log)
	if err != nil {
		log.Fatal("failed to dump ledger programs", zap.Error(err))
	}

	log.Info("ledger programs are successfully dumped",
		zap.String("dir", cfg.Dump.Directory),
		zap.Stringer("id", id))
}
