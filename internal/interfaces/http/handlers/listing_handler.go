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

// ListingHandler handles listing endpoints
type ListingHandler struct {
	listingUsecase *usecases.ListingUsecase
}

// NewListingHandler creates a new listing handler
func NewListingHandler(listingUsecase *usecases.ListingUsecase) *ListingHandler {
	return &ListingHandler{
		listingUsecase: listingUsecase,
	}
}

// Publish creates an ACTIVE listing
// POST /api/v1/listings
func (h *ListingHandler) Publish(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	var input entities.CreateListingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	listing, err := h.listingUsecase.Publish(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, listing)
}

// Cancel withdraws an ACTIVE listing
// DELETE /api/v1/listings/:id
func (h *ListingHandler) Cancel(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid listing id"))
		return
	}

	if err := h.listingUsecase.Cancel(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "listing cancelled"})
}

// Get returns one listing and counts the view
// GET /api/v1/listings/:id
func (h *ListingHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid listing id"))
		return
	}

	var viewerID *uuid.UUID
	if userID, ok := middleware.GetUserID(c); ok {
		viewerID = &userID
	}

	listing, err := h.listingUsecase.GetByID(c.Request.Context(), id, viewerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, listing)
}

// Search returns listings matching the query filters
// GET /api/v1/listings
func (h *ListingHandler) Search(c *gin.Context) {
	var filter entities.ListingFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	var searcherID *uuid.UUID
	if userID, ok := middleware.GetUserID(c); ok {
		searcherID = &userID
	}

	listings, meta, err := h.listingUsecase.Search(c.Request.Context(), &filter, searcherID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, listings, meta)
}
