package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"hrhelper/recruiter-service/internal/model"
)

type createJobOfferRequest struct {
	UserID      string   `json:"user_id" binding:"required"`
	Title       string   `json:"title" binding:"required"`
	Description *string  `json:"description"`
	Keywords    []string `json:"keywords"`
}

type replaceKeywordsRequest struct {
	Keywords []string `json:"keywords"`
}

func (h *Handler) listJobOffers(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	offers, err := h.svc.ListJobOffers(c.Request.Context(), uid)
	if err != nil {
		h.writeError(c, err, "Server error while fetching job offers")
		return
	}
	c.JSON(http.StatusOK, offers)
}

func (h *Handler) createJobOffer(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	var req createJobOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			jsonError(c, http.StatusBadRequest, "Invalid input: user_id and title are required fields.")
			return
		}
		jsonError(c, http.StatusBadRequest, "Invalid JSON format.")
		return
	}
	if req.UserID != uid {
		jsonError(c, http.StatusForbidden, "user_id does not match the signed-in user")
		return
	}

	offer, err := h.svc.CreateJobOffer(c.Request.Context(), model.JobOfferCreate{
		UserID:      req.UserID,
		Title:       req.Title,
		Description: req.Description,
		Keywords:    req.Keywords,
	})
	if err != nil {
		h.writeError(c, err, "Server error while creating job offer")
		return
	}
	c.JSON(http.StatusCreated, offer)
}

func (h *Handler) getJobOffer(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	offer, err := h.svc.GetJobOffer(c.Request.Context(), uid, id)
	if err != nil {
		h.writeError(c, err, "Server error while fetching job offer")
		return
	}
	if offer == nil {
		jsonError(c, http.StatusNotFound, "job offer not found")
		return
	}
	c.JSON(http.StatusOK, offer)
}

func (h *Handler) updateJobOffer(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req model.JobOfferUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "Invalid JSON format.")
		return
	}
	offer, err := h.svc.UpdateJobOffer(c.Request.Context(), uid, id, req)
	if err != nil {
		h.writeError(c, err, "Server error while updating job offer")
		return
	}
	c.JSON(http.StatusOK, offer)
}

func (h *Handler) replaceKeywords(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req replaceKeywordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "Invalid JSON format.")
		return
	}
	offer, err := h.svc.ReplaceKeywords(c.Request.Context(), uid, id, req.Keywords)
	if err != nil {
		h.writeError(c, err, "Server error while updating keywords")
		return
	}
	c.JSON(http.StatusOK, offer)
}

func (h *Handler) deleteJobOffer(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteJobOffer(c.Request.Context(), uid, id); err != nil {
		h.writeError(c, err, "Server error while deleting job offer")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) stats(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	st, err := h.svc.Stats(c.Request.Context(), uid, id)
	if err != nil {
		h.writeError(c, err, "Server error while computing stats")
		return
	}
	c.JSON(http.StatusOK, st)
}
