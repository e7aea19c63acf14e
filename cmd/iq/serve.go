package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iqwerty/iq/internal/config"
	"github.com/iqwerty/iq/pkg/component"
	"github.com/iqwerty/iq/pkg/server"
)

func serveCmd() *cobra.Command {
	var (
		port int
		host string
		page string
	)

	cmd := &cobra.Command{
		Use:   "serve [page.html]",
		Short: "Start the live preview server",
		Long: `Start the preview server for a page of component markup.

The server watches the configured template paths, reloads connected
browsers on change, and streams DOM patches over WebSocket.

Examples:
  iq serve index.html
  iq serve --port=8080 index.html`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				page = args[0]
			}
			return runServe(port, host, page)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from iq.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from iq.json)")

	return cmd
}

func runServe(port int, host, page string) error {
	cfg, err := config.Find(".")
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Port = port
	}
	if host != "" {
		cfg.Host = host
	}

	var markup string
	if page != "" {
		data, err := os.ReadFile(page)
		if err != nil {
			return fmt.Errorf("read page: %w", err)
		}
		markup = string(data)
	}

	printBanner()
	fmt.Println("  serve")
	fmt.Println()

	// The CLI binary carries no user controllers; pages served here can
	// still exercise templates, interpolation and hot reload. Applications
	// with controllers embed pkg/server directly.
	srv, err := server.New(cfg, component.NewRegistry(), server.WithPage(markup))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\n\n  Shutting down...")
		cancel()
	}()

	success("Listening on http://%s", cfg.Addr())
	info("Press Ctrl+C to stop")
	return srv.Run(ctx)
}
