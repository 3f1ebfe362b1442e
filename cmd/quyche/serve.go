package quyche

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lacviet-ai/quyche/pkg/config"
	"github.com/lacviet-ai/quyche/pkg/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the quyche HTTP server",
	Long: `Start the quyche HTTP server to provide REST API access to the retrieval engine.

The server provides endpoints for:
- Retrieving ranked chunks for a query
- Listing and reading corpus documents
- Reloading the corpus without downtime
- Health checks`,
	RunE: runServe,
}

var (
	serverHost string
	serverPort int
	serverMode string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "localhost", "Server host")
	serveCmd.Flags().IntVar(&serverPort, "port", 8080, "Server port")
	serveCmd.Flags().StringVar(&serverMode, "mode", "release", "Server mode (debug, release, test)")

	serveCmd.Flags().String("corpus-dir", "", "Directory holding index.json and document files")
	serveCmd.Flags().String("entities-file", "", "Pre-extracted entities JSON file")
	serveCmd.Flags().String("tree-dir", "", "Directory holding per-document tree JSON files")

	serveCmd.Flags().String("llm-model", "", "Chat model for tree reasoning")
	serveCmd.Flags().String("llm-api-key", "", "Chat model API key")
	serveCmd.Flags().String("llm-base-url", "", "Chat model base URL")

	serveCmd.Flags().String("telemetry-parquet-path", "", "Directory for query telemetry parquet files")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	overrideConfigWithFlags(cmd, cfg)

	logger := newLogger(cfg.Log)

	client, err := buildClient(cfg, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Initialize(cmd.Context()); err != nil {
		return fmt.Errorf("failed to initialize corpus: %w", err)
	}
	status := client.Status()
	logger.Info("corpus ready",
		"documents", status.Documents,
		"chunks", status.Chunks,
		"entities", status.Entities,
		"trees", status.Trees,
	)

	srv := server.New(cfg, client, logger)
	srv.Setup()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.Info("received signal", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		logger.Info("server stopped gracefully")
		return nil
	}
}

func overrideConfigWithFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serverHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = serverPort
	}
	if cmd.Flags().Changed("mode") {
		cfg.Server.Mode = serverMode
	}

	if cmd.Flags().Changed("corpus-dir") {
		cfg.Corpus.Dir, _ = cmd.Flags().GetString("corpus-dir")
	}
	if cmd.Flags().Changed("entities-file") {
		cfg.Corpus.EntitiesFile, _ = cmd.Flags().GetString("entities-file")
	}
	if cmd.Flags().Changed("tree-dir") {
		cfg.Corpus.TreeDir, _ = cmd.Flags().GetString("tree-dir")
	}

	if cmd.Flags().Changed("llm-model") {
		cfg.LLM.Model, _ = cmd.Flags().GetString("llm-model")
	}
	if cmd.Flags().Changed("llm-api-key") {
		cfg.LLM.APIKey, _ = cmd.Flags().GetString("llm-api-key")
	}
	if cmd.Flags().Changed("llm-base-url") {
		cfg.LLM.BaseURL, _ = cmd.Flags().GetString("llm-base-url")
	}

	if cmd.Flags().Changed("telemetry-parquet-path") {
		cfg.Telemetry.ParquetPath, _ = cmd.Flags().GetString("telemetry-parquet-path")
	}
}
