package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	redisadapter "github.com/hotelbooking/hotelweb/internal/adapters/redis"
	"github.com/hotelbooking/hotelweb/internal/bootstrap"
	"github.com/hotelbooking/hotelweb/internal/domain/access"
)

type decideOptions struct {
	Path    string
	Token   string
	Role    string
	HotelID string
}

func parseDecideFlags(args []string) (decideOptions, error) {
	fs := flag.NewFlagSet("decide", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := decideOptions{}
	fs.StringVar(&opts.Path, "path", "", "Request path, e.g. /hotel/dashboard/5")
	fs.StringVar(&opts.Token, "token", "", "Value of the token cookie (any non-empty value counts as signed in)")
	fs.StringVar(&opts.Role, "role", "", "Value of the role cookie")
	fs.StringVar(&opts.HotelID, "hotel-id", "", "Value of the hotel id cookie")

	if err := fs.Parse(args); err != nil {
		return decideOptions{}, err
	}
	opts.Path = strings.TrimSpace(opts.Path)
	if opts.Path == "" {
		return decideOptions{}, errors.New("--path is required")
	}
	if !strings.HasPrefix(opts.Path, "/") {
		return decideOptions{}, errors.New("--path must start with /")
	}
	return opts, nil
}

func runDecide(cmdCtx *commandContext, args []string) error {
	opts, err := parseDecideFlags(args)
	if err != nil {
		return err
	}
	gate := bootstrap.NewGate(cmdCtx.Config.Gateway, nil, cmdCtx.Logger)
	d, err := gate.Probe(opts.Path, opts.Token, opts.Role, opts.HotelID)
	if err != nil {
		return fmt.Errorf("probe %s: %w", opts.Path, err)
	}
	return printDecision(cmdCtx.Out, d)
}

func printDecision(w io.Writer, d access.Decision) error {
	if err := writef(w, "outcome:  %s\n", d.Outcome); err != nil {
		return err
	}
	if d.Outcome == access.OutcomeRedirect {
		if err := writef(w, "location: %s\n", d.Location); err != nil {
			return err
		}
	}
	if err := writef(w, "reason:   %s\n", d.Reason); err != nil {
		return err
	}
	return writef(w, "class:    %s\n", d.Class)
}

func parseRevokeFlags(args []string) (string, error) {
	fs := flag.NewFlagSet("session-revoke", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	token := fs.String("token", "", "Session token (the token cookie value)")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if strings.TrimSpace(*token) == "" {
		return "", errors.New("--token is required")
	}
	return strings.TrimSpace(*token), nil
}

func runSessionRevoke(cmdCtx *commandContext, args []string) error {
	token, err := parseRevokeFlags(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	client, err := bootstrap.ConnectRedis(ctx, bootstrap.DatabaseConfig{
		RedisConfig: cmdCtx.Config.Redis,
		Logger:      cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			cmdCtx.Logger.Warn("redis close failed", "error", cerr)
		}
	}()

	store := redisadapter.NewSessionStore(client, cmdCtx.Config.Redis.KeyPrefix)
	exists, err := store.Exists(ctx, token)
	if err != nil {
		return fmt.Errorf("lookup session: %w", err)
	}
	if !exists {
		return writeln(cmdCtx.Out, "no such session")
	}
	if err := store.Delete(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return writeln(cmdCtx.Out, "session revoked")
}
