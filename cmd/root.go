package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Alturino/ecfresh/internal/config"
	"github.com/Alturino/ecfresh/internal/constants"
	"github.com/Alturino/ecfresh/internal/log"
)

func Start() {
	bootstrap := zerolog.New(os.Stdout).With().Timestamp().Logger()
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	c = bootstrap.WithContext(c)

	cfg := config.Get(c, constants.AppStorefront)

	logger := log.Get("/var/log/ecfresh.log", cfg.Application).
		With().
		Str(log.KeyAppName, constants.AppStorefront).
		Str(log.KeyTag, "main Start").
		Logger()
	c = logger.WithContext(c)

	rootCmd := &cobra.Command{Use: "ecfresh"}
	rootCmd.AddCommand(&cobra.Command{
		Use:   "storefront",
		Short: "Run the storefront service",
		Run: func(cmd *cobra.Command, args []string) {
			runStorefront(cmd.Context(), cfg)
		},
	})
	if err := rootCmd.ExecuteContext(c); err != nil {
		logger.Fatal().Err(err).Msgf("error when executing command=%s", err.Error())
	}
}
