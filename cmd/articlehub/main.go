package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/docgen"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/articlehub/internal/logger"
	"github.com/nkiryanov/articlehub/internal/repository/postgres"
)

func main() {
	if err := run(context.Background(), os.Getenv, os.Getwd, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "can't run app, sorry: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, getenv func(string) string, getwd func() (string, error), args []string) error {
	// Initialize context that cancelled on SIGINT or SIGTERM
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := LoadConfig(getenv, getwd, args)
	switch {
	case errors.Is(err, pflag.ErrHelp):
		return nil
	case err != nil:
		return err
	}

	if c.PrintRoutes {
		return printRoutes(os.Stdout, c)
	}

	srv, err := NewServerApp(ctx, c)
	if err != nil {
		return err
	}
	defer srv.Close()

	// Run server
	if err := srv.Run(ctx); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	return nil
}

// Print route table as markdown, database is not touched
func printRoutes(w io.Writer, c *Config) error {
	if c.SecretKey == "" {
		c.SecretKey = "routes"
	}

	router, err := newRouter(c, postgres.NewStorage(nil), logger.NewNoOpLogger())
	if err != nil {
		return err
	}

	doc := docgen.MarkdownRoutesDoc(router, docgen.MarkdownOpts{
		ProjectPath: "github.com/nkiryanov/articlehub",
		Intro:       "Server rendered pages of articlehub.",
	})

	_, err = io.WriteString(w, doc)
	return err
}
