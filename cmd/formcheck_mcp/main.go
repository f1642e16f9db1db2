// Package main runs the formcheck MCP server over stdio.
// The same MCP server is also mounted on the main service at /mcp over HTTP.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/2beens/formcheck/internal/batch"
	"github.com/2beens/formcheck/internal/config"
	"github.com/2beens/formcheck/internal/db"
	formcheckmcp "github.com/2beens/formcheck/internal/mcp"
	"github.com/2beens/formcheck/internal/reports"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	log "github.com/sirupsen/logrus"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	flag.Parse()

	// stdout carries the protocol
	log.SetOutput(os.Stderr)

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDBName,
		DBPassword:     os.Getenv("FORMCHECK_POSTGRES_PASS"),
		TracingEnabled: false,
	})
	if err != nil {
		log.Fatalf("db pool: %v", err)
	}
	defer dbPool.Close()

	reportsRepo := reports.NewRepo(dbPool)
	if err := reportsRepo.EnsureSchema(ctx); err != nil {
		log.Fatalf("ensure reports schema: %v", err)
	}

	runner := batch.NewRunner(
		batch.WithMaxFrames(cfg.MaxBatchFrames),
		batch.WithIssueWindow(cfg.IssueWindow),
		batch.WithDefaultFPS(cfg.BatchFPS),
	)
	server := formcheckmcp.NewServer(reports.NewService(reportsRepo, runner, nil))

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatal(err)
	}
}
