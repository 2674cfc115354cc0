package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tenth-speed-writer/PFLTK/internal/apperr"
)

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.InvalidArgument:
		return http.StatusBadRequest
	case apperr.PermissionDenied:
		return http.StatusForbidden
	case apperr.NotFound, apperr.MapNotFound, apperr.MapNotInCurrentWar:
		return http.StatusNotFound
	case apperr.AlreadyExists, apperr.StaleWar, apperr.CannotCreateTicketForWar, apperr.ReferentialIntegrity:
		return http.StatusConflict
	case apperr.NoData, apperr.StaleData:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

type errorResponse struct {
	Error       string `json:"error"`
	Kind        string `json:"kind,omitempty"`
	LastSeenWar int    `json:"last_seen_war,omitempty"`
}

// abortWithError writes err as JSON. Server-side failures are logged; the
// caller sees only their kind.
func abortWithError(c *gin.Context, logger logrus.FieldLogger, err error) {
	status := StatusFor(err)
	resp := errorResponse{Error: err.Error()}
	if e, ok := apperr.As(err); ok {
		resp.Kind = string(e.Kind)
		resp.LastSeenWar = e.LastSeenWar
	}

	if status == http.StatusInternalServerError {
		logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		resp.Error = "internal error"
	}
	c.AbortWithStatusJSON(status, resp)
}
