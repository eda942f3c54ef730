// Command vireod is the process entrypoint: load configuration,
// construct a node.Node, and run it until interrupted — the same role
// kaspad.go's main()/newKaspad() play for the teacher, generalized to
// this core's components.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vireo-chain/vireo/internal/config"
	"github.com/vireo-chain/vireo/internal/logging"
	"github.com/vireo-chain/vireo/internal/node"
)

var configPath string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vireod",
		Short: "vireod runs a GHOSTDAG-based block-DAG node",
		RunE:  run,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (defaults built in if omitted)")
	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	log := logging.New("node")

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	n, err := node.New(node.Options{
		Config:        cfg,
		Logger:        log,
		StatsInterval: 15 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("constructing node: %w", err)
	}

	n.Start()
	defer n.Stop()

	log.Infof("vireod running, genesis=%s", n.Genesis())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	log.Infof("shutdown signal received")
	return nil
}
