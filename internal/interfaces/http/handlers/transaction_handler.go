package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainerrors "domainlease.backend/internal/domain/errors"
	"domainlease.backend/internal/interfaces/http/middleware"
	"domainlease.backend/internal/interfaces/http/response"
	"domainlease.backend/internal/usecases"
)

// TransactionHandler handles payment ledger endpoints
type TransactionHandler struct {
	txUsecase *usecases.TransactionUsecase
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(txUsecase *usecases.TransactionUsecase) *TransactionHandler {
	return &TransactionHandler{
		txUsecase: txUsecase,
	}
}

// ListMine returns the caller's ledger entries
// GET /api/v1/transactions
func (h *TransactionHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	rows, meta, err := h.txUsecase.ListMine(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, rows, meta)
}

// Get returns one ledger entry owned by the caller
// GET /api/v1/transactions/:id
func (h *TransactionHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid transaction id"))
		return
	}

	row, err := h.txUsecase.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, row)
}
