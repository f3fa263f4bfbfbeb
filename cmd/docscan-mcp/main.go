package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/docscan-mcp/internal/scanner"
	"github.com/ironsheep/docscan-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	log := newLogger(os.Getenv("DOCSCAN_LOG_LEVEL"))

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("docscan-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		case "scan":
			if err := runScan(os.Args[2:], os.Stdout, os.Stderr, log); err != nil {
				fmt.Fprintf(os.Stderr, "docscan-mcp: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	log.WithFields(logrus.Fields{
		"version": Version,
		"built":   BuildTime,
		"commit":  GitCommit,
	}).Debug("starting MCP server")

	cfg, err := scanner.LoadConfig(os.Getenv("DOCSCAN_CONFIG"))
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	srv, err := server.New(Version, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	if err := srv.Run(); err != nil {
		log.WithError(err).Fatal("server error")
	}
}

// newLogger returns a logger on stderr (stdout is for MCP protocol) at the
// named level. Unknown names select info.
func newLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil || level == "" {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

func printHelp() {
	fmt.Println("docscan-mcp - turn photographs of documents into flat scanned pages")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  docscan-mcp                      Run the MCP server on stdin/stdout")
	fmt.Println("  docscan-mcp scan [flags] <image> Scan one photograph")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Run 'docscan-mcp scan -h' for the scan flags.")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  DOCSCAN_LOG_LEVEL=debug    Log level (debug, info, warn, error)")
	fmt.Println("  DOCSCAN_CONFIG=<file>      JSON scanner configuration for the server")
	fmt.Println()
	fmt.Println("The server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}
