package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	mcpadapter "treenotes/internal/adapters/mcp"
	"treenotes/internal/config"
	"treenotes/internal/logging"
	"treenotes/internal/session"
)

func main() {
	configFlag := flag.String("config", "", "path to config.yaml")
	vaultFlag := flag.String("vault", "", "path to the vault, overrides the config")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("treenotes-mcp: %v", err)
	}
	if *vaultFlag != "" {
		cfg.Vault = *vaultFlag
	}

	// stdout carries the protocol
	logger, err := logging.New(cfg.LogLevel, os.Stderr)
	if err != nil {
		log.Fatalf("treenotes-mcp: %v", err)
	}

	s, err := session.Open(cfg, logger)
	if err != nil {
		log.Fatalf("treenotes-mcp: %v", err)
	}
	defer s.Close()

	vault := mcpadapter.NewVault(s.Coord, s.Store, cfg.TopLevelCutoff)

	mcpServer := server.NewMCPServer(
		"treenotes-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, vault)
	mcpadapter.RegisterWriteTools(mcpServer, vault)

	if err := server.ServeStdio(mcpServer); err != nil {
		logger.WithError(err).Error("server stopped")
		s.Close()
		os.Exit(1)
	}
}
