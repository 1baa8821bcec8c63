package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/shift-payroll-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// TestDatabaseSetup holds a connection to the integration database.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and applies the schema.
// The calling test is skipped when the variable is unset.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(context.Background(), dsn, database.PoolOptions{MaxConns: 4})
	require.NoError(t, err, "failed to connect to test database")

	setup := &TestDatabaseSetup{DB: db}
	require.NoError(t, postgresql.ApplySchema(context.Background(), db))
	require.NoError(t, setup.TruncateAllTables(context.Background()))

	t.Cleanup(setup.Close)
	return setup
}

// TruncateAllTables removes all rows from every table.
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := t.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"payroll_items",
		"payroll_runs",
		"break_sessions",
		"duty_sessions",
		"break_policies",
		"employees",
		"salary_rules",
		"shift_segments",
		"shift_presets",
		"teams",
		"companies",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

// Close closes the database connection
func (t *TestDatabaseSetup) Close() {
	t.DB.Close()
}

func newUUID(t *testing.T) string {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)
	return id.String()
}

// seedCompany inserts a company and one employee in zone, returning their ids.
func (t *TestDatabaseSetup) seedCompany(tb *testing.T, zone string) (companyID, employeeID string) {
	tb.Helper()
	ctx := context.Background()

	companyID = newUUID(tb)
	employeeID = newUUID(tb)

	_, err := t.DB.Exec(ctx, `INSERT INTO companies (id, name) VALUES ($1, $2)`, companyID, "Acme")
	require.NoError(tb, err)
	_, err = t.DB.Exec(ctx, `INSERT INTO employees (id, company_id, full_name, time_zone) VALUES ($1, $2, $3, $4)`,
		employeeID, companyID, "Ayu Lestari", zone)
	require.NoError(tb, err)

	return companyID, employeeID
}
