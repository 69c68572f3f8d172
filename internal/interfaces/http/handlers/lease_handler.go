package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"domainlease.backend/internal/domain/entities"
	domainerrors "domainlease.backend/internal/domain/errors"
	"domainlease.backend/internal/interfaces/http/middleware"
	"domainlease.backend/internal/interfaces/http/response"
	"domainlease.backend/internal/usecases"
)

// LeaseHandler handles lease lifecycle endpoints
type LeaseHandler struct {
	leaseUsecase *usecases.LeaseUsecase
}

// NewLeaseHandler creates a new lease handler
func NewLeaseHandler(leaseUsecase *usecases.LeaseUsecase) *LeaseHandler {
	return &LeaseHandler{
		leaseUsecase: leaseUsecase,
	}
}

// Create commits the caller to a listing
// POST /api/v1/leases
func (h *LeaseHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	var input entities.CreateLeaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	lease, err := h.leaseUsecase.CreateLease(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, lease)
}

// Get returns a lease visible to its parties
// GET /api/v1/leases/:id
func (h *LeaseHandler) Get(c *gin.Context) {
	userID, leaseID, ok := h.callerAndLease(c)
	if !ok {
		return
	}

	lease, err := h.leaseUsecase.GetByID(c.Request.Context(), userID, leaseID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, lease)
}

// ListMine returns the caller's leases as lessee
// GET /api/v1/leases
func (h *LeaseHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	leases, meta, err := h.leaseUsecase.ListMine(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, leases, meta)
}

// Complete closes a lease
// POST /api/v1/leases/:id/complete
func (h *LeaseHandler) Complete(c *gin.Context) {
	userID, leaseID, ok := h.callerAndLease(c)
	if !ok {
		return
	}

	var input entities.CompleteLeaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	lease, err := h.leaseUsecase.Complete(c.Request.Context(), userID, leaseID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, lease)
}

// Terminate ends a lease early for cause
// POST /api/v1/leases/:id/terminate
func (h *LeaseHandler) Terminate(c *gin.Context) {
	userID, leaseID, ok := h.callerAndLease(c)
	if !ok {
		return
	}

	var input entities.TerminateLeaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	lease, err := h.leaseUsecase.Terminate(c.Request.Context(), userID, leaseID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, lease)
}

// Dispute freezes a lease pending resolution
// POST /api/v1/leases/:id/dispute
func (h *LeaseHandler) Dispute(c *gin.Context) {
	userID, leaseID, ok := h.callerAndLease(c)
	if !ok {
		return
	}

	lease, err := h.leaseUsecase.Dispute(c.Request.Context(), userID, leaseID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, lease)
}

func (h *LeaseHandler) callerAndLease(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return uuid.Nil, uuid.Nil, false
	}

	leaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid lease id"))
		return uuid.Nil, uuid.Nil, false
	}
	return userID, leaseID, true
}
