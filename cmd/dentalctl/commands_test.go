package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-admin/internal/config"
	"github.com/jwalitptl/dental-admin/pkg/session"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Hours: config.HoursConfig{
			Calendar:    config.WindowConfig{Open: "07:00", Close: "21:00"},
			Reschedule:  config.WindowConfig{Open: "08:00", Close: "20:00"},
			SlotMinutes: 30,
		},
		Session: config.SessionConfig{CookieName: "session", TTL: time.Hour},
		PDF:     config.PDFConfig{ClinicName: "Clínica Sonrisa"},
		Secrets: config.Secrets{SessionSecret: testSecret},
	}
	prev := loadConfig
	loadConfig = func() (*config.Config, error) { return cfg, nil }
	t.Cleanup(func() { loadConfig = prev })
	return cfg
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestBudgetExport(t *testing.T) {
	testConfig(t)
	dir := t.TempDir()
	file := filepath.Join(dir, "budget.json")
	require.NoError(t, os.WriteFile(file, []byte(`{
		"id": "PRES-2024-000123",
		"patient_name": "Ana Torres",
		"patient_surname": "Torres",
		"items": [{"procedure": "Limpieza", "unit_price": 100, "quantity": 2, "amount_paid": 50}]
	}`), 0o644))

	out, err := run(t, "budget", "export", "--file", file, "--out", filepath.Join(dir, "pdf"))
	require.NoError(t, err)

	path := filepath.Join(dir, "pdf", "Presupuesto_Torres_000123.pdf")
	assert.FileExists(t, path)
	assert.Contains(t, out, "Por pagar S/ 150.00")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestBudgetExportFromBackendFormat(t *testing.T) {
	testConfig(t)
	dir := t.TempDir()
	file := filepath.Join(dir, "budget.json")
	require.NoError(t, os.WriteFile(file, []byte(`{
		"idPresupuesto": 42,
		"idPaciente": 7,
		"detalles": [{"idProcedimiento": 1, "procedimiento": "Resina", "precioUnitario": "80.00", "cantidad": 1, "montoPagado": 0}]
	}`), 0o644))

	out, err := run(t, "budget", "export", "--backend", "--file", file, "--out", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Total S/ 80.00")
}

func TestBudgetExportConfiguredCurrency(t *testing.T) {
	cfg := testConfig(t)
	cfg.PDF.Currency = "US$"
	dir := t.TempDir()
	file := filepath.Join(dir, "budget.json")
	require.NoError(t, os.WriteFile(file, []byte(`{
		"id": "PRES-2024-000123",
		"patient_surname": "Torres",
		"items": [{"procedure": "Limpieza", "unit_price": 100, "quantity": 1}]
	}`), 0o644))

	out, err := run(t, "budget", "export", "--file", file, "--out", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Total US$ 100.00")
}

func TestBudgetExportMissingFile(t *testing.T) {
	testConfig(t)
	_, err := run(t, "budget", "export", "--file", filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestSlots(t *testing.T) {
	testConfig(t)

	out, err := run(t, "slots")
	require.NoError(t, err)
	assert.Contains(t, out, "reschedule window 08:00-20:00")
	assert.Contains(t, out, "08:00 08:30")
	assert.NotContains(t, out, "19:30 20:00")

	out, err = run(t, "slots", "--window", "calendar", "--start", "20:00")
	require.NoError(t, err)
	assert.Contains(t, out, "20:30 21:00")

	_, err = run(t, "slots", "--window", "lunch")
	assert.Error(t, err)
}

func TestSessionDecode(t *testing.T) {
	testConfig(t)
	codec, err := session.NewCodec(testSecret, session.Options{CookieName: "session", TTL: time.Hour})
	require.NoError(t, err)
	value, err := codec.Encode(session.User{UUID: "u-9", Username: "recepcion"}, "tok")
	require.NoError(t, err)

	out, err := run(t, "session", "decode", "session="+value)
	require.NoError(t, err)
	assert.Contains(t, out, `"username": "recepcion"`)
	assert.Contains(t, out, `"has_backend_token": true`)

	_, err = run(t, "session", "decode", "garbage")
	assert.ErrorIs(t, err, session.ErrInvalid)
}
