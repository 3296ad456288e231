package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/hotelbooking/hotelweb/config"
	"github.com/hotelbooking/hotelweb/internal/domain/access"
	domainauth "github.com/hotelbooking/hotelweb/internal/domain/auth"
	"github.com/hotelbooking/hotelweb/internal/migrate"
	"github.com/hotelbooking/hotelweb/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommandContext(cfg config.AppConfig) (*commandContext, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &commandContext{
		Ctx:    context.Background(),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: cfg,
		Out:    out,
	}, out
}

func TestPrintUsageListsEveryCommand(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printUsage(&buf))

	out := buf.String()
	require.Contains(t, out, "Usage: hotelweb-admin <command> [flags]")
	for name := range commands() {
		assert.Contains(t, out, "  "+name)
	}
	assert.Less(t, strings.Index(out, "decide"), strings.Index(out, "staff-list"), "commands are sorted")
}

func TestParseStaffFlags(t *testing.T) {
	opts, err := parseStaffFlags("staff-assign", []string{"-user", " u-1 ", "-hotel", "42"}, true)
	require.NoError(t, err)
	assert.Equal(t, "u-1", opts.UserID)
	assert.Equal(t, "42", opts.HotelID)
	assert.Equal(t, defaultCommandTimeout, opts.Timeout)

	_, err = parseStaffFlags("staff-assign", []string{"-user", "u-1"}, true)
	require.EqualError(t, err, "--hotel is required")

	_, err = parseStaffFlags("staff-remove", []string{"-hotel", "42", "-user", "u-1"}, false)
	require.Error(t, err, "-hotel is not a staff-remove flag")

	_, err = parseStaffFlags("staff-remove", nil, false)
	require.EqualError(t, err, "--user is required")

	_, err = parseStaffFlags("staff-remove", []string{"-user", "u", "-timeout", "0s"}, false)
	require.EqualError(t, err, "--timeout must be greater than zero")
}

func TestParseMigrateFlags(t *testing.T) {
	opts, err := parseMigrateFlags([]string{"-status", "-timeout", "30s"})
	require.NoError(t, err)
	assert.True(t, opts.Status)
	assert.Equal(t, 30*time.Second, opts.Timeout)

	_, err = parseMigrateFlags([]string{"-timeout", "-1s"})
	require.Error(t, err)

	timeout, err := parseTimeoutFlag("staff-list", nil)
	require.NoError(t, err)
	assert.Equal(t, defaultCommandTimeout, timeout)
}

func TestParseDecideFlags(t *testing.T) {
	opts, err := parseDecideFlags([]string{"-path", "/hotel/dashboard/5", "-token", "t", "-role", "hotel", "-hotel-id", "5"})
	require.NoError(t, err)
	assert.Equal(t, decideOptions{Path: "/hotel/dashboard/5", Token: "t", Role: "hotel", HotelID: "5"}, opts)

	_, err = parseDecideFlags(nil)
	require.EqualError(t, err, "--path is required")

	_, err = parseDecideFlags([]string{"-path", "dashboard"})
	require.EqualError(t, err, "--path must start with /")
}

func TestRunDecide(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
		skip string
	}{
		{
			name: "signed out on protected path",
			args: []string{"-path", "/admin/reports"},
			want: []string{"outcome:  redirect", "location: /login?redirect=/admin/reports", "reason:   login_required", "class:    protected"},
		},
		{
			name: "hotel operator on own hotel",
			args: []string{"-path", "/hotel/dashboard/5/rooms", "-token", "t", "-role", "hotel", "-hotel-id", "5"},
			want: []string{"outcome:  allow", "class:    tenant-scoped"},
			skip: "location:",
		},
		{
			name: "hotel operator on another hotel",
			args: []string{"-path", "/hotel/dashboard/7", "-token", "t", "-role", "hotel", "-hotel-id", "5"},
			want: []string{"outcome:  redirect", "reason:   cross_tenant"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmdCtx, out := newCommandContext(config.AppConfig{})
			require.NoError(t, runDecide(cmdCtx, tt.args))
			for _, w := range tt.want {
				assert.Contains(t, out.String(), w)
			}
			if tt.skip != "" {
				assert.NotContains(t, out.String(), tt.skip)
			}
		})
	}
}

func TestRunDecide_UsesConfiguredGateway(t *testing.T) {
	cfg := config.AppConfig{Gateway: config.GatewayConfig{TokenCookie: "hb_token", CustomerHome: "/bookings"}}
	cmdCtx, out := newCommandContext(cfg)

	require.NoError(t, runDecide(cmdCtx, []string{"-path", "/admin", "-token", "t", "-role", "customer"}))
	assert.Contains(t, out.String(), "reason:   customer_scope")
	assert.Contains(t, out.String(), "location: /bookings")
}

func TestPrintDecision(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printDecision(&buf, access.Decision{
		Outcome: access.OutcomeAllow,
		Reason:  access.ReasonOpenRoute,
		Class:   access.ClassOpen,
	}))
	assert.Equal(t, "outcome:  allow\nreason:   open_route\nclass:    open\n", buf.String())
}

func TestPrintStaff(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printStaff(&buf, nil))
	assert.Equal(t, "no staff assignments\n", buf.String())

	buf.Reset()
	created := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	require.NoError(t, printStaff(&buf, []ports.StaffAssignment{
		{UserID: "op-1", HotelID: domainauth.TenantID("42"), CreatedAt: created},
	}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"USER", "HOTEL", "ASSIGNED"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"op-1", "42", "2025-03-01T09:30:00Z"}, strings.Fields(lines[1]))
}

func TestPrintMigrations(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printMigrations(&buf, []migrate.Migration{
		{Version: "001_staff_assignments", Applied: true},
		{Version: "002_next", Applied: false},
	}))
	out := buf.String()
	assert.Contains(t, out, "VERSION")
	assert.Regexp(t, `001_staff_assignments\s+true`, out)
	assert.Regexp(t, `002_next\s+false`, out)
}

func TestParseRevokeFlags(t *testing.T) {
	token, err := parseRevokeFlags([]string{"-token", " abc "})
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	_, err = parseRevokeFlags(nil)
	require.EqualError(t, err, "--token is required")
}
