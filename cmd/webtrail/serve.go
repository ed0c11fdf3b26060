package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/webtrailhq/webtrail/pkg/config"
	"github.com/webtrailhq/webtrail/pkg/llm/tokenizer"
	"github.com/webtrailhq/webtrail/pkg/server"
)

var serveConfigFile string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfigFile, "config", "c", "", "config file path")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(serveConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := buildLogger(cfg, "server")
	defer logger.Close()
	logger.Infof("starting webtrail %s (commit %s)", Version, Commit)

	outcomes, err := buildStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open outcome store: %w", err)
	}

	uploadDir := "uploads"
	if err := os.MkdirAll(uploadDir, 0750); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	opts := []server.Option{
		server.WithStore(outcomes),
		server.WithLogger(logger),
		server.WithUploadDir(uploadDir),
	}

	tok, err := tokenizer.New()
	if err != nil {
		logger.Warnf("tokenizer unavailable, token accounting disabled: %v", err)
	} else {
		opts = append(opts, server.WithTokenizer(tok))
	}

	srv, err := server.New(cfg, opts...)
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}

	return srv.ListenAndServe()
}
