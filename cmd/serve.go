package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vikramsengal/dukandar-shop-tool/api"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP API server",
	Long:  `Starts the HTTP API server that accepts statement uploads and returns the analysis report as JSON.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := api.DefaultConfig()
		if servePort != "" {
			cfg.Port = ":" + servePort
		}

		server := api.New(cfg)
		if err := server.Start(); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&servePort, "port", "p", "8080", "Port to run the API server on")
}
