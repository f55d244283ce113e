// recert: R2 compliance assessment engine, exposed as an MCP server.
//
// Given a facility's intake facts it determines the applicable Core
// Requirements and Appendices, selects the active question set (with
// conditional dependencies between questions), scores submitted answers,
// and derives gap lists and a certification-readiness verdict.
//
// Usage:
//
//	recert serve              # Start the MCP server (stdio transport)
//	recert validate [file]    # Validate a catalog file and print coverage
package main

import (
	"encoding/json"
	"fmt"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/recertlabs/recert/internal/catalog"
	"github.com/recertlabs/recert/internal/config"
	"github.com/recertlabs/recert/internal/logging"
	recertserver "github.com/recertlabs/recert/internal/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := runServe(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "validate":
		if err := runValidate(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
	case "--version", "-v", "version":
		fmt.Printf("recert v%s\n", recertserver.Version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.New(cfg.LogJSON)
	defer log.Sync()

	s, cleanup, err := recertserver.New(cfg, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	return mcpserver.ServeStdio(s)
}

// runValidate loads a catalog (the embedded default when no file is given),
// reports validation failures such as dependency cycles, and prints the
// coverage report.
func runValidate(args []string) error {
	var cat *catalog.Catalog
	var err error
	if len(args) > 0 {
		cat, err = catalog.LoadFile(args[0])
	} else {
		cfg, cfgErr := config.Load()
		if cfgErr != nil {
			return cfgErr
		}
		if cfg.CatalogPath != "" {
			cat, err = catalog.LoadFile(cfg.CatalogPath)
		} else {
			cat = catalog.Default()
		}
	}
	if err != nil {
		return fmt.Errorf("catalog validation failed: %w", err)
	}

	report := cat.Coverage()
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))

	for _, entry := range report.Entries {
		if !entry.Covered {
			fmt.Fprintf(os.Stderr, "WARNING: requirement %s has no questions\n", entry.Code)
		}
	}
	fmt.Fprintf(os.Stderr, "OK: catalog %s, %d questions\n", report.Version, report.TotalQuestions)
	return nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `recert v%s - R2 compliance assessment engine (MCP server)

Usage:
  recert serve              Start the MCP server (stdio transport)
  recert validate [file]    Validate a catalog file and print coverage
  recert version            Print the version

Configuration (environment):
  RECERT_DATA_DIR           SQLite data directory (default ~/.recert)
  RECERT_CATALOG_PATH       Catalog YAML (default: embedded catalog)
  RECERT_DEBOUNCE_WINDOW    Rescore coalescing window (default 500ms)
  RECERT_LOG_JSON           Log JSON to stderr instead of console format
`, recertserver.Version)
}
