package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/shift"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nightPreset = `
[[preset]]
name = "Night"

  [[preset.segment]]
  no = 1
  start = "22:00"
  end = "03:00"
  crosses_midnight = true
  late_grace_minutes = 5
`

func writePresetFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "presets.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPresetCheck(t *testing.T) {
	out, err := execute(t, "preset", "check", writePresetFile(t, nightPreset))

	require.NoError(t, err)
	assert.Contains(t, out, "ok  Night (1 segments)")
}

func TestPresetCheck_Invalid(t *testing.T) {
	path := writePresetFile(t, strings.Replace(nightPreset, "crosses_midnight = true", "crosses_midnight = false", 1))

	_, err := execute(t, "preset", "check", path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "end_time")
}

func TestPresetResolve(t *testing.T) {
	out, err := execute(t, "preset", "resolve", writePresetFile(t, nightPreset),
		"--zone", "Asia/Jakarta", "--at", "2024-03-10T16:30:00Z")
	require.NoError(t, err)

	var resp shift.ResolvedShiftSegmentResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "Night", resp.PresetName)
	assert.Equal(t, 1, resp.SegmentNo)
	assert.Equal(t, "2024-03-10", resp.ShiftDate)
	assert.Equal(t, "2024-03-10T22:00", resp.ScheduleStartLocal)
	assert.Equal(t, 300, resp.ScheduledMinutes)
	assert.True(t, resp.IsLateNow)
}

func TestPresetResolve_AfterMidnightAnchorsYesterday(t *testing.T) {
	out, err := execute(t, "preset", "resolve", writePresetFile(t, nightPreset),
		"--zone", "Asia/Jakarta", "--at", "2024-03-10T18:00:00Z")
	require.NoError(t, err)

	var resp shift.ResolvedShiftSegmentResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "2024-03-10", resp.ShiftDate)
}

func TestPresetResolve_NoActiveSegment(t *testing.T) {
	_, err := execute(t, "preset", "resolve", writePresetFile(t, nightPreset),
		"--zone", "Asia/Jakarta", "--at", "2024-03-10T05:00:00Z")

	assert.ErrorIs(t, err, shift.ErrNoActiveSegment)
}

func TestPresetResolve_BadInstant(t *testing.T) {
	_, err := execute(t, "preset", "resolve", writePresetFile(t, nightPreset), "--at", "yesterday")

	assert.Error(t, err)
}

func TestToken(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("JWT_SECRET_KEY", "cli-secret")

	out, err := execute(t, "token", "--company", "company-1", "--employee", "employee-1", "--ttl", "5m")
	require.NoError(t, err)

	svc := jwt.NewJWTService("cli-secret", "5m")
	ctx, err := jwt.VerifiedContext(context.Background(), svc.JWTAuth(), strings.TrimSpace(out))
	require.NoError(t, err)

	claims, err := jwt.ClaimsFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "company-1", claims.CompanyID)
	assert.Equal(t, "employee-1", claims.EmployeeID)
	assert.Equal(t, "shiftctl", claims.UserID)
	assert.False(t, claims.IsAdmin)
}

func TestToken_RequiresIdentity(t *testing.T) {
	_, err := execute(t, "token", "--company", "company-1")

	assert.ErrorContains(t, err, "--employee is required")
}

func TestJobsRun_RequiresName(t *testing.T) {
	_, err := execute(t, "jobs", "run")

	assert.Error(t, err)
}

func TestPresetResolve_UnknownZone(t *testing.T) {
	_, err := execute(t, "preset", "resolve", writePresetFile(t, nightPreset), "--zone", "Mars/Olympus")

	assert.ErrorContains(t, err, "unknown time zone")
}
