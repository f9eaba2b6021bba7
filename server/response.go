package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/deskhub/errors"
)

// DataResponse is the success envelope.
type DataResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// RespondWithError derives the status and body from an *apperrors.AppError;
// anything else becomes a 500. withCode adds the structured code to the body.
func RespondWithError(c *gin.Context, err error, withCode bool) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.Internal(err)
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse(withCode))
}

// RespondOK sends 200 with data.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Success: true, Data: data})
}

// RespondMessage sends 200 with a message and no data.
func RespondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, DataResponse{Success: true, Message: message})
}
