package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hrhelper/recruiter-service/internal/auth"
)

type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type signUpRequest struct {
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

func (h *Handler) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "email and password are required")
		return
	}
	res, err := h.id.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err, "Server error while signing in")
		return
	}
	h.setSessionCookie(c, res.AccessToken, int(time.Until(res.ExpiresAt).Seconds()))
	c.JSON(http.StatusOK, res)
}

func (h *Handler) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "all fields are required")
		return
	}
	u, err := h.id.SignUp(c.Request.Context(), req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		h.writeError(c, err, "Server error while signing up")
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *Handler) signOut(c *gin.Context) {
	if err := h.id.SignOut(c.Request.Context(), auth.TokenFromRequest(c.Request)); err != nil {
		h.writeError(c, err, "Server error while signing out")
		return
	}
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"redirect": auth.LoginPath})
}

func (h *Handler) me(c *gin.Context) {
	u := auth.UserFrom(c)
	if u == nil {
		jsonError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookie, value, maxAge, "/", "", h.opts.SecureCookies, true)
}
