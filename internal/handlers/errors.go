// internal/handlers/errors.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vendora/marketplace-backend/internal/services"
	"github.com/vendora/marketplace-backend/internal/utils"
)

// respondServiceError maps the service error taxonomy onto HTTP statuses.
// Unknown errors are logged and hidden behind a generic 500.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.BadRequestResponse(c, err.Error(), nil)
	case errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, err.Error())
	case errors.Is(err, services.ErrConflict):
		utils.ConflictResponse(c, err.Error())
	case errors.Is(err, services.ErrInvalidTransition):
		utils.ConflictResponse(c, err.Error())
	case errors.Is(err, services.ErrForbidden):
		utils.ForbiddenResponse(c, err.Error())
	default:
		logrus.WithError(err).Error("Unhandled service error")
		utils.InternalErrorResponse(c, "")
	}
}
