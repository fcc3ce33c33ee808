package handler

import (
	"fmt"
	"net/http"

	"github.com/folgercn/ai-bookkeeper/internal/models"
	"github.com/folgercn/ai-bookkeeper/internal/services/duplicate"
	"github.com/folgercn/ai-bookkeeper/internal/services/extraction"
	"github.com/folgercn/ai-bookkeeper/internal/services/interpreter"
	"github.com/folgercn/ai-bookkeeper/internal/services/staging"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RecordHandler drives the staging workflow: submit raw input, iterate with
// correction instructions, resolve the batch.
type RecordHandler struct {
	extractor   *extraction.Gateway
	interpreter *interpreter.Gateway
	detector    *duplicate.Detector
	staging     *staging.Service
	log         zerolog.Logger
}

func NewRecordHandler(
	extractor *extraction.Gateway,
	interp *interpreter.Gateway,
	detector *duplicate.Detector,
	stagingSvc *staging.Service,
	log zerolog.Logger,
) *RecordHandler {
	return &RecordHandler{
		extractor:   extractor,
		interpreter: interp,
		detector:    detector,
		staging:     stagingSvc,
		log:         log,
	}
}

// Submit handles POST /record: raw text or image in, a freshly opened batch
// of annotated pending items out.
func (h *RecordHandler) Submit(c *gin.Context) {
	var payload extraction.RawInput
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	ownerID := owner(c)
	items, err := h.extractor.Extract(c.Request.Context(), ownerID, payload)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	candidates := h.detector.Annotate(ownerID, items)
	batch, err := h.staging.OpenBatch(ownerID, candidates)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"batch_id": batch.ID,
		"status":   batch.Status,
		"items":    batch.Items,
		"summary":  fmt.Sprintf("recognized %d entries", len(batch.Items)),
	})
}

// Interact handles POST /record/interact: one free-text correction
// instruction against an open batch.
func (h *RecordHandler) Interact(c *gin.Context) {
	var payload struct {
		BatchID     string `json:"batch_id"`
		Instruction string `json:"instruction"`
	}
	if err := c.BindJSON(&payload); err != nil || payload.Instruction == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	batchID, err := uuid.Parse(payload.BatchID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch ID"})
		return
	}

	ownerID := owner(c)
	batch, err := h.staging.GetBatch(batchID, ownerID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	mutations, err := h.interpreter.Interpret(c.Request.Context(), batch, payload.Instruction)
	if err != nil {
		// The batch is untouched; the user may retry the instruction.
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	batch, committed, err := h.staging.ApplyMutations(batchID, ownerID, mutations)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"batch_id":          batch.ID,
		"status":            batch.Status,
		"mutations_applied": len(mutations),
		"remaining_pending": batch.PendingCount(),
		"committed_count":   committed,
		"items":             batch.Items,
	})
}

// Resolve handles POST /record/confirm: the deterministic bulk actions that
// never go through the instruction engine.
func (h *RecordHandler) Resolve(c *gin.Context) {
	var payload struct {
		BatchID string `json:"batch_id"`
		Action  string `json:"action"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	batchID, err := uuid.Parse(payload.BatchID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch ID"})
		return
	}

	var mutation models.Mutation
	switch payload.Action {
	case "confirm_all":
		mutation = models.Mutation{All: true, Op: models.OpConfirm}
	case "reject_all":
		mutation = models.Mutation{All: true, Op: models.OpReject}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action"})
		return
	}

	batch, committed, err := h.staging.ApplyMutations(batchID, owner(c), []models.Mutation{mutation})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"batch_id":          batch.ID,
		"status":            batch.Status,
		"remaining_pending": batch.PendingCount(),
		"committed_count":   committed,
	})
}

// GetBatch handles GET /record/:batchId.
func (h *RecordHandler) GetBatch(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("batchId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch ID"})
		return
	}

	batch, err := h.staging.GetBatch(batchID, owner(c))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"batch_id":          batch.ID,
		"status":            batch.Status,
		"remaining_pending": batch.PendingCount(),
		"items":             batch.Items,
	})
}
