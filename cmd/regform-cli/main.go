package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/goliatone/go-regform/components/mockapi"
	"github.com/goliatone/go-regform/internal/config"
	"github.com/goliatone/go-regform/pkg/client"
	"github.com/goliatone/go-regform/pkg/orchestrator"
	"github.com/goliatone/go-regform/pkg/render"
	"github.com/goliatone/go-regform/pkg/renderers/tui"
)

func main() {
	err := run(context.Background(), os.Args[1:], os.Getenv, os.Stdout, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, tui.ErrAborted):
		os.Exit(130)
	default:
		fmt.Fprintf(os.Stderr, "regform-cli: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, getenv func(string) string, stdout, stderr io.Writer) error {
	cfg, err := config.Parse(args, getenv)
	if err != nil {
		return err
	}
	logger := cfg.Logger(stderr)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	collaborators, err := newCollaborators(cfg, logger)
	if err != nil {
		return err
	}
	if cfg.Serve != "" {
		listener, err := net.Listen("tcp", cfg.Serve)
		if err != nil {
			return fmt.Errorf("regform-cli: listen %s: %w", cfg.Serve, err)
		}
		fmt.Fprintf(stdout, "Serving registration API on http://%s\n", listener.Addr())
		return serve(ctx, listener, collaborators, cfg, logger)
	}

	session, err := orchestrator.New(collaborators,
		orchestrator.WithEventID(cfg.EventID),
		orchestrator.WithLogger(logger),
		orchestrator.WithHiddenAnswers(cfg.IncludeHidden),
		orchestrator.WithNavigator(orchestrator.NavigatorFunc(func(route string) {
			fmt.Fprintf(stdout, "Your offer needs attention, continue at %s\n", route)
		})),
	)
	if err != nil {
		return err
	}
	defer session.Close()

	engine, err := render.NewEngine(render.WithTemplateDir(cfg.TemplateDir))
	if err != nil {
		return err
	}
	text, err := render.New(
		render.WithEngine(engine),
		render.WithEventName(cfg.EventName),
		render.WithInvitationURL(cfg.InvitationURL),
	)
	if err != nil {
		return err
	}
	runner, err := tui.New(
		tui.WithPromptDriver(tui.NewSurveyDriver(stdout)),
		tui.WithTextRenderer(text),
		tui.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	outcome, err := runner.Run(ctx, session)
	var conflict *orchestrator.ConflictError
	switch {
	case errors.As(err, &conflict), errors.Is(err, tui.ErrNoForm):
		logger.Info("regform-cli: nothing to register", "reason", err)
		return nil
	case err != nil:
		return err
	}
	logger.Info("regform-cli: finished",
		"state", string(outcome.State),
		"update", outcome.IsUpdate,
		"request_id", outcome.RequestID,
	)
	return nil
}

func newCollaborators(cfg config.Config, logger *slog.Logger) (client.Collaborators, error) {
	if cfg.Fixture != "" {
		logger.Debug("regform-cli: using fixture", "path", cfg.Fixture)
		return client.LoadFixtureFile(cfg.Fixture)
	}
	return client.NewHTTPClient(cfg.BaseURL,
		client.WithToken(cfg.Token),
		client.WithTimeout(cfg.Timeout),
		client.WithLogger(logger),
	)
}

// serve exposes collaborators as a registration API until ctx is done.
func serve(ctx context.Context, listener net.Listener, collaborators client.Collaborators, cfg config.Config, logger *slog.Logger) error {
	opts := []mockapi.OptionFn{mockapi.WithLogger(logger)}
	if cfg.Token != "" {
		opts = append(opts, mockapi.WithGuard(mockapi.RequireBearer(cfg.Token)))
	}
	server := &http.Server{
		Handler:           mockapi.New(collaborators, opts...).Handler(),
		ReadHeaderTimeout: cfg.Timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("regform-cli: shutting down server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("regform-cli: shutdown: %w", err)
	}
	return nil
}
