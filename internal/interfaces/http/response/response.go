package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainerrors "domainlease.backend/internal/domain/errors"
	"domainlease.backend/pkg/utils"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Paginated sends a list response with pagination metadata
func Paginated(c *gin.Context, data interface{}, meta *utils.PaginationMeta) {
	c.JSON(http.StatusOK, gin.H{
		"data":       data,
		"pagination": meta,
	})
}

// Error sends an error response. AppErrors carry their own status and code;
// bare sentinels from the repository layer are mapped here.
func Error(c *gin.Context, err error) {
	var appErr *domainerrors.AppError
	if !errors.As(err, &appErr) {
		appErr = fromSentinel(err)
	}

	c.JSON(appErr.Status, gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
	})
}

func fromSentinel(err error) *domainerrors.AppError {
	switch {
	case errors.Is(err, domainerrors.ErrNotFound):
		return domainerrors.NotFound("resource not found")
	case errors.Is(err, domainerrors.ErrAlreadyExists):
		return domainerrors.Conflict("resource already exists")
	case errors.Is(err, domainerrors.ErrInvalidInput), errors.Is(err, domainerrors.ErrBadRequest):
		return domainerrors.BadRequest(err.Error())
	case errors.Is(err, domainerrors.ErrUnauthorized), errors.Is(err, domainerrors.ErrInvalidCredentials):
		return domainerrors.Unauthorized("unauthorized")
	case errors.Is(err, domainerrors.ErrForbidden), errors.Is(err, domainerrors.ErrOwnership):
		return domainerrors.Forbidden("forbidden")
	case errors.Is(err, domainerrors.ErrInvalidState):
		return domainerrors.InvalidState(err.Error())
	case errors.Is(err, domainerrors.ErrBindingConflict):
		return domainerrors.BindingConflict(err.Error())
	case errors.Is(err, domainerrors.ErrConcurrentModification):
		return domainerrors.ConcurrentModification(err.Error())
	case errors.Is(err, domainerrors.ErrTransient):
		return domainerrors.Transient("upstream temporarily unavailable", err)
	default:
		return domainerrors.InternalError(err)
	}
}
