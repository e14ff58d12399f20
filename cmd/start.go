package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/anrid/kbguard/internal/server"
	"github.com/anrid/kbguard/util"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the kbguard API server.",
	Run: func(cmd *cobra.Command, args []string) {
		if err := startServer(); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func startServer() error {
	logger, err := util.DefaultLogger(viper.GetBool("debug"), viper.GetString("log_dir"))
	if err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	defer logger.Sync()

	c, err := buildCore(logger)
	if err != nil {
		return errors.Wrap(err, "failed to initialize core")
	}

	secret := viper.GetString("jwt_secret")
	if secret == "" {
		return errors.New("jwt_secret is not configured")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// shutting down gracefully on interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	return server.Run(ctx, c, server.Config{
		Addr:      viper.GetString("listen_addr"),
		JWTSecret: []byte(secret),
	})
}
