package testutil

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"societypay/model"
	"societypay/util/database"
)

// PostgresEnv names the URL-form DSN used by repository tests.
const PostgresEnv = "SOCIETYPAY_TEST_DATABASE_URL"

// Postgres returns a migrated DB in a throwaway schema, or skips the test when
// PostgresEnv is unset.
func Postgres(t *testing.T) *database.DB {
	t.Helper()
	dsn := os.Getenv(PostgresEnv)
	if dsn == "" {
		t.Skipf("%s not set", PostgresEnv)
	}
	ctx := context.Background()
	schema := "t_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	admin, err := database.New(ctx, dsn)
	require.NoError(t, err)
	_, err = admin.Pool.Exec(ctx, "CREATE SCHEMA "+schema)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = admin.Pool.Exec(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
		admin.Close()
	})

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	db, err := database.New(ctx, dsn+sep+"search_path="+schema)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(ctx))
	return db
}

// SeedBill inserts m and an unpaid bill b for repository tests.
func SeedBill(t *testing.T, db *database.DB, m model.Member, b model.Bill) {
	t.Helper()
	ctx := context.Background()
	_, err := db.Pool.Exec(ctx, `INSERT INTO members (id, name, email, flat) VALUES ($1,$2,$3,$4)`,
		m.ID, m.Name, m.Email, m.Flat)
	require.NoError(t, err)
	_, err = db.Pool.Exec(ctx, `INSERT INTO bills (id, member_id, member_email, amount, late_fee, status) VALUES ($1,$2,$3,$4,$5,$6)`,
		b.ID, b.MemberID, b.MemberEmail, b.Amount, b.LateFee, b.Status)
	require.NoError(t, err)
}
