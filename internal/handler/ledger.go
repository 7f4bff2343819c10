package handler

import (
	"net/http"

	"github.com/xZoluGames/InventarioApp-sub001/internal/dto"
	"github.com/xZoluGames/InventarioApp-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

// LedgerHandler serves expenses and the daily cash summary.
type LedgerHandler struct {
	expenses service.ExpenseService
	cash     service.CashService
}

func NewLedgerHandler(expenses service.ExpenseService, cash service.CashService) *LedgerHandler {
	return &LedgerHandler{expenses: expenses, cash: cash}
}

// ── Expenses ───────────────────────────────────────────────────────────────

func (h *LedgerHandler) CreateExpense(c *gin.Context) {
	var req dto.ExpenseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.expenses.Create(c.Request.Context(), sessionOf(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *LedgerHandler) ListExpenses(c *gin.Context) {
	var f dto.DateFilter
	if !bindQuery(c, &f) {
		return
	}
	resp, err := h.expenses.List(c.Request.Context(), f.From, f.To)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LedgerHandler) DeleteExpense(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.expenses.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Daily cash ─────────────────────────────────────────────────────────────

func (h *LedgerHandler) Today(c *gin.Context) {
	resp, err := h.cash.Today(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Day GET /v1/cash/:date (YYYY-MM-DD)
func (h *LedgerHandler) Day(c *gin.Context) {
	resp, err := h.cash.Get(c.Request.Context(), c.Param("date"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LedgerHandler) ListDays(c *gin.Context) {
	var f dto.DateFilter
	if !bindQuery(c, &f) {
		return
	}
	resp, err := h.cash.List(c.Request.Context(), f.From, f.To)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LedgerHandler) OpenDay(c *gin.Context) {
	var req dto.OpenDayRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.cash.Open(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LedgerHandler) CloseDay(c *gin.Context) {
	var req dto.CloseDayRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.cash.Close(c.Request.Context(), sessionOf(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
