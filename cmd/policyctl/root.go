package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akolanti/PolicyRAG/internal/bootstrap"
	"github.com/akolanti/PolicyRAG/internal/config"
	"github.com/akolanti/PolicyRAG/internal/rag"
	"github.com/akolanti/PolicyRAG/pkg/logger_i"
)

var (
	configPath string
	remote     bool

	// ragService is built on first use; tests install a stub.
	ragService rag.Service
)

var rootCmd = &cobra.Command{
	Use:   "policyctl",
	Short: "Manage and query the local policy index",
	Long: `policyctl works on the same vector index bundle as the API server.
Documents are ingested synchronously and questions are answered in-process.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadService,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml")
	rootCmd.PersistentFlags().BoolVar(&remote, "remote", false, "use redis history and the qdrant answer cache when configured")
}

func loadService(cmd *cobra.Command, args []string) error {
	if ragService != nil {
		return nil
	}
	settings, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	logger_i.Init(settings.IsProd, settings.LogLevel)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ragService = bootstrap.Build(ctx, settings, bootstrap.Options{Remote: remote}).Service
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
