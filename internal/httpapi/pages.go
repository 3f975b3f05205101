package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hrhelper/recruiter-service/internal/auth"
)

// root mirrors the guard's redirect for "/".
func (h *Handler) root(c *gin.Context) {
	if auth.UserFrom(c) != nil {
		c.Redirect(http.StatusSeeOther, auth.DashboardPath)
		return
	}
	c.Redirect(http.StatusSeeOther, auth.LoginPath)
}

func (h *Handler) publicPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"page": strings.TrimPrefix(c.FullPath(), "/")})
}

func (h *Handler) dashboard(c *gin.Context) {
	u := auth.UserFrom(c)
	if u == nil {
		c.Redirect(http.StatusSeeOther, auth.LoginPath)
		return
	}
	offers, err := h.svc.Dashboard(c.Request.Context(), u.ID.String())
	if err != nil {
		h.writeError(c, err, "Server error while loading dashboard")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"page":   "dashboard",
		"user":   u,
		"offers": offers,
	})
}

func (h *Handler) offerPage(c *gin.Context) {
	u := auth.UserFrom(c)
	if u == nil {
		c.Redirect(http.StatusSeeOther, auth.LoginPath)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	details, err := h.svc.OfferDetails(c.Request.Context(), u.ID.String(), id)
	if err != nil {
		h.writeError(c, err, "Server error while loading offer")
		return
	}
	c.JSON(http.StatusOK, details)
}
