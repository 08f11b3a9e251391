package payroll

import (
	"bytes"
	"errors"
	"strings"
	"time"

	"payroll-monitor/core/audit"
	"payroll-monitor/core/logger"
	"payroll-monitor/core/reconcile"
	"payroll-monitor/core/records"
	"payroll-monitor/core/sweep"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for payroll records.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ConfirmRequest is the optional body of a manual confirmation.
type ConfirmRequest struct {
	ConfirmTime *time.Time `json:"confirm_time" example:"2024-06-03T09:00:00Z"`
}

// RegisterRoutes registers the payroll routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	api := app.Group("/api")

	group := api.Group("/records")
	group.Get("/", h.HandleList)
	group.Post("/", h.HandleLoad)
	group.Get("/summary", h.HandleSummary)
	group.Get("/export", h.HandleExport)
	group.Get("/:address", h.HandleGet)
	group.Get("/:address/history", h.HandleHistory)
	group.Post("/:address/check", h.HandleCheck)
	group.Post("/:address/confirm", h.HandleConfirm)

	api.Post("/sweep", h.HandleStartSweep)
	api.Get("/sweep", h.HandleSweepProgress)
	api.Delete("/sweep", h.HandleCancelSweep)
}

// HandleList returns every record.
// @Summary List Records
// @Description Returns all payee records in ingestion order with their reconciliation state.
// @Tags records
// @Produce json
// @Success 200 {array} records.PayeeRecord
// @Router /api/records [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	return c.JSON(h.service.Records())
}

// HandleLoad replaces the active record set.
// @Summary Load Batch
// @Description Replaces all records with a new batch. Accepts JSON ({"records": [...]} or an array) or CSV with a header row (name, department, expected, address). Invalid rows are skipped and every loaded record starts as pending.
// @Tags records
// @Accept json
// @Accept text/csv
// @Produce json
// @Param batch body BatchRequest true "Batch"
// @Success 200 {object} LoadReport
// @Failure 400 {object} map[string]string "Invalid body"
// @Router /api/records [post]
func (h *Handler) HandleLoad(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	body := bytes.NewReader(c.Body())

	var (
		req BatchRequest
		err error
	)
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), "text/csv") {
		req, err = ParseBatchCSV(body)
	} else {
		req, err = ParseBatchJSON(body)
	}
	if err != nil {
		l.Warn("Rejected batch", zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(h.service.LoadBatch(c.Context(), req))
}

// HandleSummary returns dashboard counts.
// @Summary Summary
// @Description Returns total, confirmed and pending counts plus a per-status breakdown.
// @Tags records
// @Produce json
// @Success 200 {object} records.Summary
// @Router /api/records/summary [get]
func (h *Handler) HandleSummary(c *fiber.Ctx) error {
	return c.JSON(h.service.Summary())
}

// HandleExport streams every record as CSV.
// @Summary Export CSV
// @Description Exports all records with status, matched transaction hash, amount and time.
// @Tags records
// @Produce text/csv
// @Success 200 {string} string "CSV"
// @Router /api/records/export [get]
func (h *Handler) HandleExport(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.service.Export(&buf); err != nil {
		return respondError(c, err)
	}
	filename := "payroll_status_" + h.service.now().Format("2006-01-02") + ".csv"
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	return c.Send(buf.Bytes())
}

// HandleGet returns one record.
// @Summary Get Record
// @Tags records
// @Produce json
// @Param address path string true "Recipient address"
// @Success 200 {object} records.PayeeRecord
// @Failure 404 {object} map[string]string "Unknown address"
// @Router /api/records/{address} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	rec, err := h.service.Record(c.Params("address"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rec)
}

// HandleHistory returns the audit trail of one record.
// @Summary Check History
// @Description Returns the newest check and confirmation entries first. Empty when no database is configured.
// @Tags records
// @Produce json
// @Param address path string true "Recipient address"
// @Param limit query int false "Maximum entries" default(50)
// @Success 200 {array} audit.CheckEntry
// @Failure 404 {object} map[string]string "Unknown address"
// @Router /api/records/{address}/history [get]
func (h *Handler) HandleHistory(c *fiber.Ctx) error {
	entries, err := h.service.History(c.Context(), c.Params("address"), c.QueryInt("limit", 50))
	if err != nil {
		return respondError(c, err)
	}
	if entries == nil {
		entries = []audit.CheckEntry{}
	}
	return c.JSON(entries)
}

// HandleCheck reconciles one record against the ledger.
// @Summary Check Record
// @Description Fetches the recipient's recent transfers and matches them against the expected amount. A ledger failure is reported in the result (status check_failed), not as an HTTP error.
// @Tags records
// @Produce json
// @Param address path string true "Recipient address"
// @Param expected query string false "Override the expected amount"
// @Success 200 {object} reconcile.Result
// @Failure 400 {object} map[string]string "Invalid amount"
// @Failure 404 {object} map[string]string "Unknown address"
// @Router /api/records/{address}/check [post]
func (h *Handler) HandleCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	address := c.Params("address")

	var (
		res *reconcile.Result
		err error
	)
	if raw := c.Query("expected"); raw != "" {
		expected, parseErr := decimal.NewFromString(raw)
		if parseErr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid expected amount"})
		}
		res, err = h.service.CheckAmount(c.Context(), address, expected)
	} else {
		res, err = h.service.Check(c.Context(), address)
	}
	if err != nil {
		l.Warn("Check rejected", zap.String("address", address), zap.Error(err))
		return respondError(c, err)
	}
	return c.JSON(res)
}

// HandleConfirm records a manual confirmation.
// @Summary Confirm Manually
// @Description Marks the record as paid outside the ledger (other currency). The confirm time defaults to now.
// @Tags records
// @Accept json
// @Produce json
// @Param address path string true "Recipient address"
// @Param body body ConfirmRequest false "Confirmation"
// @Success 200 {object} records.PayeeRecord
// @Failure 400 {object} map[string]string "Invalid body"
// @Failure 404 {object} map[string]string "Unknown address"
// @Router /api/records/{address}/confirm [post]
func (h *Handler) HandleConfirm(c *fiber.Ctx) error {
	var req ConfirmRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
		}
	}

	var at time.Time
	if req.ConfirmTime != nil {
		at = *req.ConfirmTime
	}
	rec, err := h.service.Confirm(c.Context(), c.Params("address"), at)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rec)
}

// HandleStartSweep starts a background sweep.
// @Summary Start Sweep
// @Description Checks every record sequentially, one address per interval. Only one sweep runs at a time.
// @Tags sweep
// @Produce json
// @Success 202 {object} sweep.Progress
// @Failure 409 {object} map[string]string "Sweep already running"
// @Router /api/sweep [post]
func (h *Handler) HandleStartSweep(c *fiber.Ctx) error {
	progress, err := h.service.StartSweep()
	if err != nil {
		return respondError(c, err)
	}
	logger.WithRayID(h.service.logger, c).Info("Sweep requested", zap.String("run_id", progress.RunID))
	return c.Status(fiber.StatusAccepted).JSON(progress)
}

// HandleSweepProgress returns the current or last sweep.
// @Summary Sweep Progress
// @Tags sweep
// @Produce json
// @Success 200 {object} sweep.Progress
// @Router /api/sweep [get]
func (h *Handler) HandleSweepProgress(c *fiber.Ctx) error {
	return c.JSON(h.service.SweepProgress())
}

// HandleCancelSweep stops the running sweep after its current check.
// @Summary Cancel Sweep
// @Tags sweep
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /api/sweep [delete]
func (h *Handler) HandleCancelSweep(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"cancelled": h.service.CancelSweep()})
}

func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, reconcile.ErrAddressNotFound), errors.Is(err, records.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, records.ErrInvalidInput), errors.Is(err, reconcile.ErrInvalidAmount):
		status = fiber.StatusBadRequest
	case errors.Is(err, sweep.ErrAlreadyRunning):
		status = fiber.StatusConflict
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
