package cli

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archviews/internal/server"
)

const (
	defaultAddr     = ":8080"
	shutdownTimeout = 5 * time.Second
)

// serveCommand creates the serve command exposing the views over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags sourceFlags
		addr  string
	)

	cmd := &cobra.Command{
		Use:   "serve [solution]",
		Short: "Serve views of a solution over HTTP",
		Long: `Serve analyses the solution once and answers:

  GET  /healthz               liveness
  GET  /elements              elements as JSON (?kind= filters)
  GET  /views                 views built so far
  GET  /views/{name}.{format} a view as svg, pdf, png, dot or json
  POST /reload                re-analyse the solution

A view name that is not yet known is used as the seed element of a new view.`,
		Example: `  archviews serve shop.toml --addr :9000
  curl localhost:9000/views/overview.svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts, err := c.loadOptions(cmd, args, &flags)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, opts)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := server.New(runner, opts, c.Logger)
			if err := srv.Load(ctx); err != nil {
				return err
			}
			return c.listen(ctx, addr, srv.Handler())
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")

	return cmd
}

// listen serves h on addr until ctx is cancelled, then shuts down gracefully.
func (c *CLI) listen(ctx context.Context, addr string, h http.Handler) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- httpServer.ListenAndServe()
	}()
	host := addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	printSuccess("Serving on %s", StyleLink.Render("http://"+host))
	printDetail("Press Ctrl+C to stop")

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
