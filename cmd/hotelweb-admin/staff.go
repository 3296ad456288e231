package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/hotelbooking/hotelweb/internal/bootstrap"
	"github.com/hotelbooking/hotelweb/internal/data"
	domainauth "github.com/hotelbooking/hotelweb/internal/domain/auth"
	"github.com/hotelbooking/hotelweb/internal/migrate"
	"github.com/hotelbooking/hotelweb/internal/ports"
)

type staffOptions struct {
	UserID  string
	HotelID string
	Timeout time.Duration
}

type migrateOptions struct {
	Status  bool
	Timeout time.Duration
}

func parseMigrateFlags(args []string) (migrateOptions, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := migrateOptions{}
	fs.BoolVar(&opts.Status, "status", false, "List migrations and whether they are applied")
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Maximum duration for the command")

	if err := fs.Parse(args); err != nil {
		return migrateOptions{}, err
	}
	if opts.Timeout <= 0 {
		return migrateOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func parseTimeoutFlag(name string, args []string) (time.Duration, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	timeout := fs.Duration("timeout", defaultCommandTimeout, "Maximum duration for the command")
	if err := fs.Parse(args); err != nil {
		return 0, err
	}
	if *timeout <= 0 {
		return 0, errors.New("--timeout must be greater than zero")
	}
	return *timeout, nil
}

// parseStaffFlags parses -user and -hotel. needHotel controls whether -hotel
// is required (staff-assign) or rejected as meaningless (staff-remove).
func parseStaffFlags(name string, args []string, needHotel bool) (staffOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := staffOptions{}
	fs.StringVar(&opts.UserID, "user", "", "User identifier (as issued by the identity provider)")
	if needHotel {
		fs.StringVar(&opts.HotelID, "hotel", "", "Hotel identifier")
	}
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Maximum duration for the command")

	if err := fs.Parse(args); err != nil {
		return staffOptions{}, err
	}
	opts.UserID = strings.TrimSpace(opts.UserID)
	opts.HotelID = strings.TrimSpace(opts.HotelID)
	if opts.UserID == "" {
		return staffOptions{}, errors.New("--user is required")
	}
	if needHotel && opts.HotelID == "" {
		return staffOptions{}, errors.New("--hotel is required")
	}
	if opts.Timeout <= 0 {
		return staffOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func runMigrate(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags(args)
	if err != nil {
		return err
	}
	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		if !opts.Status {
			if err := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); err != nil {
				return err
			}
		}
		status, err := migrate.Status(ctx, db)
		if err != nil {
			return fmt.Errorf("migration status: %w", err)
		}
		return printMigrations(cmdCtx.Out, status)
	})
}

func printMigrations(w io.Writer, status []migrate.Migration) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writef(tw, "VERSION\tAPPLIED\n"); err != nil {
		return err
	}
	for _, m := range status {
		if err := writef(tw, "%s\t%t\n", m.Version, m.Applied); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func runStaffAssign(cmdCtx *commandContext, args []string) error {
	opts, err := parseStaffFlags("staff-assign", args, true)
	if err != nil {
		return err
	}
	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		if err := data.NewStaffRepo(db).Assign(ctx, opts.UserID, domainauth.TenantID(opts.HotelID)); err != nil {
			return fmt.Errorf("assign staff: %w", err)
		}
		return writef(cmdCtx.Out, "assigned %s to hotel %s\n", opts.UserID, opts.HotelID)
	})
}

func runStaffRemove(cmdCtx *commandContext, args []string) error {
	opts, err := parseStaffFlags("staff-remove", args, false)
	if err != nil {
		return err
	}
	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		if err := data.NewStaffRepo(db).Remove(ctx, opts.UserID); err != nil {
			return fmt.Errorf("remove staff: %w", err)
		}
		return writef(cmdCtx.Out, "removed assignment for %s\n", opts.UserID)
	})
}

func runStaffList(cmdCtx *commandContext, args []string) error {
	timeout, err := parseTimeoutFlag("staff-list", args)
	if err != nil {
		return err
	}
	return withDatabase(cmdCtx, timeout, func(ctx context.Context, db *sql.DB) error {
		list, err := data.NewStaffRepo(db).List(ctx)
		if err != nil {
			return fmt.Errorf("list staff: %w", err)
		}
		return printStaff(cmdCtx.Out, list)
	})
}

func printStaff(w io.Writer, list []ports.StaffAssignment) error {
	if len(list) == 0 {
		return writeln(w, "no staff assignments")
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writef(tw, "USER\tHOTEL\tASSIGNED\n"); err != nil {
		return err
	}
	for _, a := range list {
		if err := writef(tw, "%s\t%s\t%s\n", a.UserID, a.HotelID, a.CreatedAt.UTC().Format(time.RFC3339)); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func withDatabase(
	cmdCtx *commandContext,
	timeout time.Duration,
	f func(context.Context, *sql.DB) error,
) error {
	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(ctx, bootstrap.DatabaseConfig{
		DBConfig: cmdCtx.Config.Postgres,
		Logger:   cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", cerr)
		}
	}()

	return f(ctx, db)
}
