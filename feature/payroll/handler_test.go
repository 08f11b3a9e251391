package payroll

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"payroll-monitor/core/audit"
	"payroll-monitor/core/database"
	"payroll-monitor/core/reconcile"
	"payroll-monitor/core/records"
	"payroll-monitor/core/snapshot"
	"payroll-monitor/core/sweep"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	aliceAddr = "TAliceXq9cJ5fK1mR3nV7wB2dH8sL4pY6tZ"
	bobAddr   = "TBobN4kP8rW2xC6vM1qJ9hF5gD3sA7eL0uY"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Transfers(ctx context.Context, address string) ([]reconcile.Transfer, error) {
	args := m.Called(ctx, address)
	if t, ok := args.Get(0).([]reconcile.Transfer); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

type testEnv struct {
	app          *fiber.App
	svc          *Service
	source       *mockSource
	snapshotPath string
}

func setupTestApp(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	store := records.NewMemoryStore()
	source := new(mockSource)
	engine := reconcile.NewEngine(store, source, reconcile.Config{Decimals: 6, FetchTimeout: time.Second}, logger)
	sweeper := sweep.New(store, engine, sweep.Config{RetryFailed: false}, logger)

	path := filepath.Join(t.TempDir(), "records.json")
	writer := snapshot.NewWriter(logger, snapshot.NewFileSink(path))

	db, err := database.Connect(database.Config{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	repo := audit.NewRepository(db)
	require.NoError(t, repo.Migrate(context.Background()))

	svc := NewService(store, engine, sweeper, writer, repo, logger)
	t.Cleanup(svc.Close)

	app := fiber.New()
	NewHandler(svc).RegisterRoutes(app)
	return &testEnv{app: app, svc: svc, source: source, snapshotPath: path}
}

func (e *testEnv) do(t *testing.T, method, target, contentType, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := e.app.Test(req, 5000)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func (e *testEnv) load(t *testing.T) {
	t.Helper()
	status, _ := e.do(t, "POST", "/api/records", "application/json", `{"records":[
		{"name":"Alice","department":"Ops","address":"`+aliceAddr+`","expected_amount":"100"},
		{"name":"Bob","address":"`+bobAddr+`","expected_amount":60}
	]}`)
	require.Equal(t, fiber.StatusOK, status)
}

func transfer(to string, raw int64, hash string) reconcile.Transfer {
	return reconcile.Transfer{Recipient: to, RawAmount: decimal.NewFromInt(raw), BlockTime: time.Now(), Hash: hash}
}

func TestHandleLoad(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		env := setupTestApp(t)
		status, body := env.do(t, "POST", "/api/records", "application/json", `[
			{"name":"Alice","address":"`+aliceAddr+`","expected_amount":"100"},
			{"name":"Nobody","address":"","expected_amount":"5"}
		]`)
		require.Equal(t, fiber.StatusOK, status)

		var report LoadReport
		require.NoError(t, json.Unmarshal(body, &report))
		assert.Equal(t, LoadReport{Loaded: 1, Skipped: 1}, report)
		assert.FileExists(t, env.snapshotPath)
	})

	t.Run("CSV", func(t *testing.T) {
		env := setupTestApp(t)
		csvBody := "address,name,expected\n" + aliceAddr + ",Alice,100\n" + bobAddr + ",Bob,abc\n"
		status, body := env.do(t, "POST", "/api/records", "text/csv", csvBody)
		require.Equal(t, fiber.StatusOK, status)

		var report LoadReport
		require.NoError(t, json.Unmarshal(body, &report))
		assert.Equal(t, LoadReport{Loaded: 1, Skipped: 1}, report)
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		env := setupTestApp(t)
		status, _ := env.do(t, "POST", "/api/records", "application/json", `{"records":`)
		assert.Equal(t, fiber.StatusBadRequest, status)
	})
}

func TestHandleListAndGet(t *testing.T) {
	env := setupTestApp(t)
	env.load(t)

	status, body := env.do(t, "GET", "/api/records", "", "")
	require.Equal(t, fiber.StatusOK, status)
	var list []records.PayeeRecord
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 2)
	assert.Equal(t, "Alice", list[0].Identifier)
	assert.Equal(t, records.StatusPending, list[1].Status)

	status, body = env.do(t, "GET", "/api/records/"+strings.ToLower(bobAddr), "", "")
	require.Equal(t, fiber.StatusOK, status)
	var rec records.PayeeRecord
	require.NoError(t, json.Unmarshal(body, &rec))
	assert.Equal(t, bobAddr, rec.Address)
	assert.True(t, rec.ExpectedAmount.Equal(decimal.NewFromInt(60)))

	status, _ = env.do(t, "GET", "/api/records/TUnknown", "", "")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestHandleCheck(t *testing.T) {
	t.Run("Confirmed", func(t *testing.T) {
		env := setupTestApp(t)
		env.load(t)
		env.source.On("Transfers", mock.Anything, aliceAddr).
			Return([]reconcile.Transfer{transfer(aliceAddr, 100_000_000, "h1")}, nil).Once()

		status, body := env.do(t, "POST", "/api/records/"+aliceAddr+"/check", "", "")
		require.Equal(t, fiber.StatusOK, status)

		var res reconcile.Result
		require.NoError(t, json.Unmarshal(body, &res))
		assert.True(t, res.Success)
		assert.Equal(t, records.StatusConfirmed, res.Status)
		assert.Equal(t, "h1", res.TxHash)

		rec, err := env.svc.Record(aliceAddr)
		require.NoError(t, err)
		assert.Equal(t, records.StatusConfirmed, rec.Status)

		status, body = env.do(t, "GET", "/api/records/"+aliceAddr+"/history", "", "")
		require.Equal(t, fiber.StatusOK, status)
		var entries []audit.CheckEntry
		require.NoError(t, json.Unmarshal(body, &entries))
		require.Len(t, entries, 1)
		assert.Equal(t, audit.SourceAuto, entries[0].Source)
		assert.Equal(t, "h1", entries[0].TxHash)
	})

	t.Run("LedgerFailure", func(t *testing.T) {
		env := setupTestApp(t)
		env.load(t)
		env.source.On("Transfers", mock.Anything, bobAddr).Return(nil, errors.New("429 too many requests")).Once()

		status, body := env.do(t, "POST", "/api/records/"+bobAddr+"/check", "", "")
		require.Equal(t, fiber.StatusOK, status)

		var res reconcile.Result
		require.NoError(t, json.Unmarshal(body, &res))
		assert.False(t, res.Success)
		assert.Equal(t, records.StatusCheckFailed, res.Status)
		assert.Contains(t, res.Error, "429")
	})

	t.Run("ExpectedOverride", func(t *testing.T) {
		env := setupTestApp(t)
		env.load(t)
		env.source.On("Transfers", mock.Anything, bobAddr).
			Return([]reconcile.Transfer{transfer(bobAddr, 30_000_000, "h2")}, nil).Once()

		status, body := env.do(t, "POST", "/api/records/"+bobAddr+"/check?expected=30", "", "")
		require.Equal(t, fiber.StatusOK, status)

		var res reconcile.Result
		require.NoError(t, json.Unmarshal(body, &res))
		assert.Equal(t, records.StatusConfirmed, res.Status)
		assert.False(t, res.HasAmountDifference)
	})

	t.Run("InvalidExpected", func(t *testing.T) {
		env := setupTestApp(t)
		env.load(t)

		status, _ := env.do(t, "POST", "/api/records/"+bobAddr+"/check?expected=abc", "", "")
		assert.Equal(t, fiber.StatusBadRequest, status)
		status, _ = env.do(t, "POST", "/api/records/"+bobAddr+"/check?expected=-1", "", "")
		assert.Equal(t, fiber.StatusBadRequest, status)
		env.source.AssertNotCalled(t, "Transfers", mock.Anything, mock.Anything)
	})

	t.Run("UnknownAddress", func(t *testing.T) {
		env := setupTestApp(t)
		env.load(t)

		status, _ := env.do(t, "POST", "/api/records/TUnknown/check", "", "")
		assert.Equal(t, fiber.StatusNotFound, status)
		env.source.AssertNotCalled(t, "Transfers", mock.Anything, mock.Anything)
	})
}

func TestHandleConfirm(t *testing.T) {
	t.Run("WithTime", func(t *testing.T) {
		env := setupTestApp(t)
		env.load(t)

		status, body := env.do(t, "POST", "/api/records/"+bobAddr+"/confirm", "application/json", `{"confirm_time":"2024-06-03T09:00:00Z"}`)
		require.Equal(t, fiber.StatusOK, status)

		var rec records.PayeeRecord
		require.NoError(t, json.Unmarshal(body, &rec))
		assert.Equal(t, records.StatusManualConfirmed, rec.Status)
		assert.True(t, rec.IsOtherCurrency)
		require.NotNil(t, rec.MatchedTime)
		assert.True(t, rec.MatchedTime.Equal(time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)))

		entries, err := env.svc.History(context.Background(), bobAddr, 10)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, audit.SourceManual, entries[0].Source)
	})

	t.Run("WithoutBody", func(t *testing.T) {
		env := setupTestApp(t)
		env.load(t)

		status, _ := env.do(t, "POST", "/api/records/"+aliceAddr+"/confirm", "", "")
		assert.Equal(t, fiber.StatusOK, status)
	})

	t.Run("BadBody", func(t *testing.T) {
		env := setupTestApp(t)
		env.load(t)

		status, _ := env.do(t, "POST", "/api/records/"+aliceAddr+"/confirm", "application/json", `{"confirm_time":"yesterday"}`)
		assert.Equal(t, fiber.StatusBadRequest, status)
	})

	t.Run("UnknownAddress", func(t *testing.T) {
		env := setupTestApp(t)
		status, _ := env.do(t, "POST", "/api/records/TUnknown/confirm", "", "")
		assert.Equal(t, fiber.StatusNotFound, status)
	})
}

func TestHandleSummaryAndExport(t *testing.T) {
	env := setupTestApp(t)
	env.load(t)
	env.source.On("Transfers", mock.Anything, aliceAddr).
		Return([]reconcile.Transfer{transfer(aliceAddr, 100_000_000, "h1")}, nil).Once()
	status, _ := env.do(t, "POST", "/api/records/"+aliceAddr+"/check", "", "")
	require.Equal(t, fiber.StatusOK, status)

	status, body := env.do(t, "GET", "/api/records/summary", "", "")
	require.Equal(t, fiber.StatusOK, status)
	var summary records.Summary
	require.NoError(t, json.Unmarshal(body, &summary))
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Confirmed)
	assert.Equal(t, 1, summary.Pending)

	req := httptest.NewRequest("GET", "/api/records/export", nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "payroll_status_")

	data, _ := io.ReadAll(resp.Body)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "name,department,expected_amount,address,status,tx_hash,matched_amount,tx_time", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Alice,Ops,100,"+aliceAddr+",confirmed,h1,100,"))
	assert.Equal(t, "Bob,,60,"+bobAddr+",pending,,,", lines[2])
}

func TestHandleSweep(t *testing.T) {
	env := setupTestApp(t)
	env.load(t)

	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	env.source.On("Transfers", mock.Anything, aliceAddr).
		Run(func(mock.Arguments) {
			entered <- struct{}{}
			<-release
		}).
		Return([]reconcile.Transfer{}, nil).Once()

	status, body := env.do(t, "POST", "/api/sweep", "", "")
	require.Equal(t, fiber.StatusAccepted, status)
	var progress sweep.Progress
	require.NoError(t, json.Unmarshal(body, &progress))
	assert.True(t, progress.Running)
	assert.Equal(t, 2, progress.Total)

	<-entered
	status, _ = env.do(t, "POST", "/api/sweep", "", "")
	assert.Equal(t, fiber.StatusConflict, status)

	status, body = env.do(t, "DELETE", "/api/sweep", "", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"cancelled":true}`, string(body))

	close(release)
	env.svc.sweeper.Wait()

	status, body = env.do(t, "GET", "/api/sweep", "", "")
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &progress))
	assert.False(t, progress.Running)
	assert.True(t, progress.Cancelled)
	assert.Equal(t, 1, progress.Processed)

	rec, err := env.svc.Record(aliceAddr)
	require.NoError(t, err)
	assert.Equal(t, records.StatusNotFound, rec.Status, "in-flight check completes after cancel")
	env.source.AssertNotCalled(t, "Transfers", mock.Anything, bobAddr)

	data, err := os.ReadFile(env.snapshotPath)
	require.NoError(t, err)
	doc, err := snapshot.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, records.StatusNotFound, doc.Records[0].Status)
}

func TestLoader(t *testing.T) {
	env := setupTestApp(t)
	feature := NewFeature(env.svc)

	assert.Equal(t, "payroll", feature.Name())
	assert.True(t, feature.IsEnabled())
	assert.NoError(t, feature.Load(fiber.New()))
}

func TestHandleHistory_EmptyIsArray(t *testing.T) {
	env := setupTestApp(t)
	env.load(t)

	status, body := env.do(t, "GET", "/api/records/"+bobAddr+"/history", "", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body))

	status, _ = env.do(t, "GET", "/api/records/TUnknown/history", "", "")
	assert.Equal(t, fiber.StatusNotFound, status)
}
