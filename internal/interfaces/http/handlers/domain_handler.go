package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"domainlease.backend/internal/domain/entities"
	domainerrors "domainlease.backend/internal/domain/errors"
	"domainlease.backend/internal/interfaces/http/middleware"
	"domainlease.backend/internal/interfaces/http/response"
	"domainlease.backend/internal/usecases"
)

// DomainHandler handles domain portfolio endpoints
type DomainHandler struct {
	domainUsecase *usecases.DomainUsecase
}

// NewDomainHandler creates a new domain handler
func NewDomainHandler(domainUsecase *usecases.DomainUsecase) *DomainHandler {
	return &DomainHandler{
		domainUsecase: domainUsecase,
	}
}

// Register adds a domain to the caller's portfolio
// POST /api/v1/domains
func (h *DomainHandler) Register(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	var input entities.RegisterDomainInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	domain, err := h.domainUsecase.Register(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, domain)
}

// ListMine returns the caller's domain portfolio
// GET /api/v1/domains
func (h *DomainHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	domains, err := h.domainUsecase.ListMine(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"data": domains})
}

// Get returns one domain
// GET /api/v1/domains/:id
func (h *DomainHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid domain id"))
		return
	}

	domain, err := h.domainUsecase.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, domain)
}

// UpdateVerification records a verification verdict (admin only)
// PUT /api/v1/admin/domains/:id/verification
func (h *DomainHandler) UpdateVerification(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid domain id"))
		return
	}

	var input entities.UpdateDomainVerificationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	domain, err := h.domainUsecase.UpdateVerification(c.Request.Context(), id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, domain)
}
