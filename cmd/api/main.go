package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cosmossdk.io/log"
	"github.com/spf13/cobra"

	"github.com/openalpha/fundmarket/api"
	"github.com/openalpha/fundmarket/api/readmodel"
)

const (
	flagHost    = "host"
	flagPort    = "port"
	flagGenesis = "genesis"
	flagReload  = "reload"
	flagBench   = "bench"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd creates the read API server command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fundmarket-api",
		Short: "FundMarket read API server",
		Long: `Serves pools, NAV checkpoints and redeem slots over REST and WebSocket.
State is loaded from a genesis.json or the output of "fundmarketd export".`,
		RunE: runServer,
	}

	cmd.Flags().String(flagHost, "0.0.0.0", "Server host")
	cmd.Flags().Int(flagPort, 8080, "Server port")
	cmd.Flags().String(flagGenesis, "", "Path to a genesis or export file to serve")
	cmd.Flags().Duration(flagReload, 0, "Reload the genesis file at this interval (0 disables)")
	cmd.Flags().Bool(flagBench, false, "Enable benchmark mode (no rate limiting)")
	_ = cmd.MarkFlagRequired(flagGenesis)

	return cmd
}

func runServer(cmd *cobra.Command, _ []string) error {
	logger := log.NewLogger(os.Stdout)

	host, _ := cmd.Flags().GetString(flagHost)
	port, _ := cmd.Flags().GetInt(flagPort)
	genesis, _ := cmd.Flags().GetString(flagGenesis)
	reload, _ := cmd.Flags().GetDuration(flagReload)
	bench, _ := cmd.Flags().GetBool(flagBench)

	store := readmodel.NewStore()
	if err := store.LoadFile(genesis); err != nil {
		return err
	}
	logger.Info("loaded snapshot", "path", genesis, "pools", len(store.Pools()))

	config := api.DefaultConfig()
	config.Host = host
	config.Port = port
	config.DisableRateLimit = bench
	if bench {
		logger.Info("benchmark mode: rate limiting disabled")
	}

	server := api.NewServer(config, store, nil, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if reload > 0 {
		go reloadLoop(ctx, store, genesis, reload, logger)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start(ctx) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Stop(shutdownCtx)
}

func reloadLoop(ctx context.Context, store *readmodel.Store, path string, interval time.Duration, logger log.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := store.LoadFile(path); err != nil {
				logger.Error("reload snapshot", "path", path, "err", err)
			}
		}
	}
}
