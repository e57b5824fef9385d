package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openpaw/pawdeck/pkg/gateway"
	"github.com/openpaw/pawdeck/pkg/models"
	"github.com/openpaw/pawdeck/pkg/service"
)

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, models.Response{Code: 0, Message: "ok", Data: data})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, models.Response{Code: 400, Message: msg})
}

// fail writes err with a status derived from its kind. data is usually the
// view after the failed intent, so the caller can render the error slot.
func fail(c *gin.Context, err error, data any) {
	status := statusFor(err)
	c.JSON(status, models.Response{Code: status, Message: messageFor(err), Data: data})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrTitleRequired),
		errors.Is(err, service.ErrNameRequired),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrInvalidFilter),
		errors.Is(err, service.ErrNoFileSelected):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrSkillNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	if gateway.IsNotFound(err) {
		return http.StatusNotFound
	}
	if gerr, ok := gateway.AsError(err); ok {
		if gerr.Kind == gateway.KindNetwork {
			return http.StatusServiceUnavailable
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func messageFor(err error) string {
	if _, ok := gateway.AsError(err); ok {
		return gateway.Message(err)
	}
	return err.Error()
}
