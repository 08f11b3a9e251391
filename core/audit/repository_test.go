package audit_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"payroll-monitor/core/audit"
	"payroll-monitor/core/database"
	"payroll-monitor/core/reconcile"
	"payroll-monitor/core/records"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func setupSQLite(t *testing.T) *audit.Repository {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)

	repo := audit.NewRepository(db)
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func TestRepository_Disabled(t *testing.T) {
	ctx := context.Background()
	for name, repo := range map[string]*audit.Repository{
		"NilRepository": nil,
		"NilDB":         audit.NewRepository(nil),
	} {
		t.Run(name, func(t *testing.T) {
			assert.False(t, repo.Enabled())
			assert.NoError(t, repo.Migrate(ctx))
			assert.NoError(t, repo.Record(ctx, &audit.CheckEntry{Address: "T1"}))

			entries, err := repo.ListByAddress(ctx, "T1", 10)
			assert.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestRepository_RecordMySQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := audit.NewRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `check_entries`")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	entry := &audit.CheckEntry{Address: "taddr", Source: audit.SourceAuto, Status: records.StatusConfirmed}
	require.NoError(t, repo.Record(context.Background(), entry))

	assert.Len(t, entry.ID, 36)
	assert.False(t, entry.CheckedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListMySQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := audit.NewRepository(db)

	rows := sqlmock.NewRows([]string{"id", "address", "source", "status", "expected", "checked_at"}).
		AddRow("id-1", "taddr", "manual", "manual_confirmed", "100.000000", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `check_entries` WHERE address = ?")).
		WillReturnRows(rows)

	entries, err := repo.ListByAddress(context.Background(), "TADDR", 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.SourceManual, entries[0].Source)
	assert.Equal(t, records.StatusManualConfirmed, entries[0].Status)
	assert.True(t, entries[0].Expected.Equal(decimal.NewFromInt(100)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SQLite(t *testing.T) {
	ctx := context.Background()
	repo := setupSQLite(t)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		entry := audit.CheckEntry{
			Address:   "taddr",
			Source:    audit.SourceSweep,
			Status:    records.StatusNotFound,
			Expected:  decimal.RequireFromString("100.5"),
			CheckedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, repo.Record(ctx, &entry))
	}
	require.NoError(t, repo.Record(ctx, &audit.CheckEntry{Address: "tother", Source: audit.SourceAuto, Status: records.StatusConfirmed}))

	entries, err := repo.ListByAddress(ctx, "TAddr", 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].CheckedAt.Equal(base.Add(2*time.Hour)), "newest first")
	assert.True(t, entries[1].CheckedAt.Equal(base.Add(time.Hour)))
	assert.True(t, entries[0].Expected.Equal(decimal.RequireFromString("100.5")))
	assert.False(t, entries[0].MatchedAmount.Valid)

	all, err := repo.ListByAddress(ctx, "taddr", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestFromResult(t *testing.T) {
	txTime := time.Date(2024, 6, 2, 8, 0, 0, 0, time.UTC)
	at := txTime.Add(time.Hour)

	t.Run("Confirmed", func(t *testing.T) {
		res := &reconcile.Result{
			Address:   "TAddr",
			Success:   true,
			Confirmed: true,
			Status:    records.StatusAmountDifference,
			TxHash:    "h1",
			Amount:    decimal.RequireFromString("60"),
			TxTime:    &txTime,
		}

		entry := audit.FromResult(res, decimal.NewFromInt(100), audit.SourceAuto, at)
		assert.Equal(t, "taddr", entry.Address)
		assert.Equal(t, records.StatusAmountDifference, entry.Status)
		assert.True(t, entry.MatchedAmount.Valid)
		assert.True(t, entry.MatchedAmount.Decimal.Equal(decimal.NewFromInt(60)))
		assert.Equal(t, "h1", entry.TxHash)
		assert.Equal(t, at, entry.CheckedAt)
	})

	t.Run("Failed", func(t *testing.T) {
		res := &reconcile.Result{Address: "TAddr", Status: records.StatusCheckFailed, Error: "timeout"}

		entry := audit.FromResult(res, decimal.NewFromInt(100), audit.SourceSweep, at)
		assert.False(t, entry.MatchedAmount.Valid)
		assert.Equal(t, "timeout", entry.Error)
		assert.Equal(t, audit.SourceSweep, entry.Source)
	})
}

func TestFromRecord(t *testing.T) {
	at := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	rec := records.PayeeRecord{Address: "TAddr", ExpectedAmount: decimal.NewFromInt(30)}
	records.ApplyManualConfirm(&rec, at)

	entry := audit.FromRecord(rec, audit.SourceManual, at)
	assert.Equal(t, records.StatusManualConfirmed, entry.Status)
	assert.True(t, entry.MatchedAmount.Decimal.Equal(decimal.NewFromInt(30)))
	assert.Empty(t, entry.TxHash)
}
