package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hrhelper/recruiter-service/internal/auth"
	"hrhelper/recruiter-service/internal/recruiting"
)

func jsonError(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, gin.H{"error": msg})
}

// writeError maps domain errors to HTTP responses.
func (h *Handler) writeError(c *gin.Context, err error, internalMsg string) {
	var rve *recruiting.ValidationError
	var ave *auth.ValidationError
	switch {
	case errors.Is(err, recruiting.ErrNotFound):
		jsonError(c, http.StatusNotFound, "not found")
	case errors.Is(err, recruiting.ErrForbidden):
		jsonError(c, http.StatusForbidden, "forbidden")
	case errors.As(err, &rve):
		jsonError(c, http.StatusBadRequest, rve.Msg)
	case errors.As(err, &ave):
		jsonError(c, http.StatusBadRequest, ave.Msg)
	case errors.Is(err, auth.ErrInvalidCredentials):
		jsonError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrUnauthenticated):
		jsonError(c, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, auth.ErrEmailTaken):
		jsonError(c, http.StatusConflict, err.Error())
	default:
		_ = c.Error(err)
		jsonError(c, http.StatusInternalServerError, internalMsg+": "+err.Error())
	}
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		jsonError(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// userID returns the signed-in user's id. The auth middleware guarantees a
// user on every /api route.
func userID(c *gin.Context) (string, bool) {
	u := auth.UserFrom(c)
	if u == nil {
		jsonError(c, http.StatusUnauthorized, "authentication required")
		return "", false
	}
	return u.ID.String(), true
}
