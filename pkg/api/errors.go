package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/deliberate/pkg/credstore"
	"github.com/codeready-toolchain/deliberate/pkg/orchestrator"
	"github.com/codeready-toolchain/deliberate/pkg/provider"
	"github.com/codeready-toolchain/deliberate/pkg/services"
)

// errorResponse is the JSON envelope every non-2xx response returns.
type errorResponse struct {
	Error string `json:"error"`
}

// writeServiceError maps a services/credstore/provider/orchestrator
// sentinel error to an HTTP status code and writes the response.
// Grounded on the teacher's pkg/api/errors.go mapServiceError, ported
// from echo.HTTPError to gin's c.JSON idiom.
func writeServiceError(c *gin.Context, err error) {
	var validErr *services.ValidationError
	if errors.As(err, &validErr) {
		c.JSON(http.StatusBadRequest, errorResponse{Error: validErr.Error()})
		return
	}

	switch {
	case errors.Is(err, services.ErrNotFound), errors.Is(err, credstore.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: "resource not found"})
		return
	case errors.Is(err, services.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	case errors.Is(err, services.ErrAlreadyExists), errors.Is(err, credstore.ErrConflict):
		c.JSON(http.StatusConflict, errorResponse{Error: "resource already exists"})
		return
	case errors.Is(err, services.ErrNotCancellable), errors.Is(err, services.ErrNotReiterable):
		c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
		return
	case errors.Is(err, orchestrator.ErrAlreadyRunning), errors.Is(err, orchestrator.ErrNotRunnable), errors.Is(err, orchestrator.ErrNotPausable), errors.Is(err, orchestrator.ErrEmptyComments):
		c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
		return
	case errors.Is(err, provider.ErrNotConfigured):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	case errors.Is(err, provider.ErrNotImplemented):
		c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}

	var provErr *provider.Error
	if errors.As(err, &provErr) {
		c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}
	var cryptoErr *credstore.CryptoError
	if errors.As(err, &cryptoErr) {
		slog.Error("credential crypto failure", "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	slog.Error("unexpected service error", "error", err)
	c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}
