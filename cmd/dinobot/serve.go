package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/dinobot/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dinobot SSH server",
	Long: `Start an SSH server where every connection trains a fresh agent on
its own simulated page and watches it live.

Finished episodes from all sessions go to the same run database.

Examples:
  dinobot serve                          # Listen on the configured address
  dinobot serve --ssh :2222              # Listen on port 2222
  dinobot serve --host-key ./host_key    # Use specific host key

Users can connect with:
  ssh localhost -p 23234`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (default from config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file, generated if missing (default from config)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout in minutes before disconnecting (default from config)")
	serveCmd.Flags().IntVar(&flagEpisodes, "episodes", 0, "Episodes per session (default from config)")
}

func runServe(cmd *cobra.Command, _ []string) {
	exitOnError(serve(cmd))
}

func serve(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if flagSSHAddr != "" {
		cfg.Serve.Address = flagSSHAddr
	}
	if flagHostKey != "" {
		cfg.Serve.HostKeyPath = flagHostKey
	}
	if flagIdleTimeout > 0 {
		cfg.Serve.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	}
	if flagEpisodes > 0 {
		cfg.Serve.Episodes = flagEpisodes
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	store := openStore(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	server, err := tui.NewSSHServer(cfg, store, logger.WithPrefix("dinobot-ssh"))
	if err != nil {
		return err
	}

	fmt.Printf("Starting dinobot SSH server on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	return server.ListenAndServe()
}
