// mcp-trello: a Trello MCP server.
//
// Exposes boards, lists, cards, and checklists of the Trello REST API
// as MCP tools over stdio, with a persisted active-board session and a
// diagnostics/repair engine.
//
// Usage:
//
//	mcp-trello serve      # Start MCP server (stdio transport)
//	mcp-trello version    # Print the version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/MissionSquad/mcp-trello/internal/server"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("mcp-trello v%s\n", mcpserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run() error {
	// Best-effort: a .env next to the binary supplies TRELLO_API_KEY /
	// TRELLO_TOKEN when the MCP host doesn't inject them.
	_ = godotenv.Load()

	s, cleanup, err := mcpserver.New()
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Graceful shutdown on interrupt.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	_ = ctx // stdio server manages its own lifecycle

	return server.ServeStdio(s)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `mcp-trello v%s — Trello MCP Server

Usage:
  mcp-trello serve      Start the MCP server (stdio transport)
  mcp-trello version    Print the version

Configuration:
  TRELLO_API_KEY / TRELLO_TOKEN   default credentials (tools may override per call)
  TRELLO_BOARD_ID                 initial active board (first run only)
  TRELLO_WORKSPACE_ID             initial active workspace (first run only)
  MCP_TRELLO_DATA_DIR             session storage dir (default ~/.mcp-trello)

  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "trello": {
        "command": "mcp-trello",
        "args": ["serve"],
        "env": { "TRELLO_API_KEY": "...", "TRELLO_TOKEN": "..." }
      }
    }
  }
`, mcpserver.Version)
}
