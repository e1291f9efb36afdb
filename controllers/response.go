package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vnkhanh/bkhome-server/services"
	"go.uber.org/zap"
)

// envelope is the body of every JSON response.
type envelope struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message"`
	Data       interface{}          `json:"data"`
	Pagination *services.Pagination `json:"pagination,omitempty"`
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func respondPage[T any](c *gin.Context, message string, page *services.Paged[T]) {
	c.JSON(http.StatusOK, envelope{
		Success:    true,
		Message:    message,
		Data:       page.Items,
		Pagination: &page.Pagination,
	})
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, envelope{Success: false, Message: message})
}

// fail maps a service error to its status code. Anything unclassified is
// logged and reported as 500 without leaking the cause.
func fail(c *gin.Context, log *zap.Logger, err error) {
	var se *services.Error
	if !errors.As(err, &se) {
		log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		abort(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	abort(c, statusOf(err), se.Message)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrBadRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// idParam parses a positive integer path parameter, answering 400 otherwise.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		abort(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}
