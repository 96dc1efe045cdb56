package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sivpack/scheduler-api/pkg/errors"
)

// Response is the envelope every endpoint returns: data on success, error
// message on rejection, the other field null.
type Response struct {
	Data  interface{} `json:"data"`
	Error *string     `json:"error"`
}

func NewSuccessResponse(data interface{}) Response {
	return Response{Data: data}
}

func NewErrorResponse(message string) Response {
	return Response{Error: &message}
}

// RespondError writes a rejection with the status mapped from its kind.
// Unexpected errors collapse to a 500 without leaking internals.
func RespondError(c *gin.Context, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		if appErr.Kind == errors.KindInternal {
			c.Error(appErr)
		}
		c.JSON(appErr.StatusCode(), NewErrorResponse(appErr.Message))
		return
	}
	c.Error(err)
	c.JSON(http.StatusInternalServerError, NewErrorResponse("internal server error"))
}
