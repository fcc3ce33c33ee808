package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/folgercn/ai-bookkeeper/internal/repository"

	"github.com/gin-gonic/gin"
)

// ExpenseHandler exposes the committed-ledger CRUD surface.
type ExpenseHandler struct {
	expenses *repository.ExpenseRepository
}

func NewExpenseHandler(expenses *repository.ExpenseRepository) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses}
}

// List handles GET /expenses with optional filters and pagination.
func (h *ExpenseHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if pageSize > 100 {
		pageSize = 100
	}

	filter := repository.ExpenseFilter{
		StartDate:    c.Query("start_date"),
		EndDate:      c.Query("end_date"),
		MainCategory: c.Query("main_category"),
		Payee:        c.Query("payee"),
		Keyword:      c.Query("keyword"),
		Page:         page,
		PageSize:     pageSize,
	}

	items, total, breakdown, err := h.expenses.List(owner(c), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	totalAmount := 0.0
	for _, sum := range breakdown {
		totalAmount += sum
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
		},
		"summary": gin.H{
			"total_amount":       totalAmount,
			"category_breakdown": breakdown,
		},
	})
}

// Summary handles GET /expenses/summary: month- and year-to-date totals.
func (h *ExpenseHandler) Summary(c *gin.Context) {
	month, year, err := h.expenses.Summary(owner(c), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"month_total": month,
		"year_total":  year,
	})
}

// updatableFields guards which columns a client may touch.
var updatableFields = map[string]bool{
	"date":          true,
	"amount":        true,
	"main_category": true,
	"sub_category":  true,
	"payee":         true,
	"consumer":      true,
	"remark":        true,
}

// Update handles PUT /expenses/:id with a partial field map.
func (h *ExpenseHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expense ID"})
		return
	}

	var payload map[string]any
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	fields := make(map[string]any, len(payload))
	for key, value := range payload {
		if !updatableFields[key] {
			continue
		}
		if key == "amount" {
			amount, ok := value.(float64)
			if !ok || amount < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
				return
			}
		}
		fields[key] = value
	}

	expense, err := h.expenses.Update(owner(c), uint(id), fields)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "expense updated", "expense": expense})
}

// Delete handles DELETE /expenses/:id.
func (h *ExpenseHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expense ID"})
		return
	}

	if err := h.expenses.Delete(owner(c), uint(id)); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "expense deleted"})
}
