package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openpaw/pawdeck/pkg/gateway"
	"github.com/openpaw/pawdeck/pkg/service"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: service.ErrTitleRequired, want: http.StatusBadRequest},
		{name: "wrapped transition", err: fmt.Errorf("%w: unknown status", service.ErrInvalidTransition), want: http.StatusBadRequest},
		{name: "local not found", err: service.ErrTaskNotFound, want: http.StatusNotFound},
		{name: "canceled", err: context.Canceled, want: http.StatusServiceUnavailable},
		{name: "backend not found", err: &gateway.Error{Kind: gateway.KindServer, Status: 404, Message: "gone"}, want: http.StatusNotFound},
		{name: "backend failure", err: &gateway.Error{Kind: gateway.KindServer, Status: 500}, want: http.StatusBadGateway},
		{name: "unreachable", err: &gateway.Error{Kind: gateway.KindNetwork}, want: http.StatusServiceUnavailable},
		{name: "other", err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
