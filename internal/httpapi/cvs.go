package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hrhelper/recruiter-service/internal/model"
)

type createCVRequest struct {
	FirstName string   `json:"first_name" binding:"required"`
	LastName  string   `json:"last_name" binding:"required"`
	Keywords  []string `json:"keywords"`
}

type moveCVRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) listCVs(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cvs, err := h.svc.ListCVs(c.Request.Context(), uid, id, c.Query("status"))
	if err != nil {
		h.writeError(c, err, "Server error while fetching CVs")
		return
	}
	c.JSON(http.StatusOK, cvs)
}

func (h *Handler) createCV(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req createCVRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	cv, err := h.svc.CreateCV(c.Request.Context(), uid, id, model.CVCreate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Keywords:  req.Keywords,
	})
	if err != nil {
		h.writeError(c, err, "Server error while creating CV")
		return
	}
	c.JSON(http.StatusCreated, cv)
}

func (h *Handler) moveCV(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	offerID, ok := pathID(c, "id")
	if !ok {
		return
	}
	cvID, ok := pathID(c, "cv_id")
	if !ok {
		return
	}
	var req moveCVRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "body must contain status")
		return
	}
	cv, err := h.svc.MoveCV(c.Request.Context(), uid, offerID, cvID, req.Status)
	if err != nil {
		h.writeError(c, err, "Server error while updating CV status")
		return
	}
	c.JSON(http.StatusOK, cv)
}
