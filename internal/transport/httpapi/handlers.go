package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ContentGate/internal/usecase"
)

type moveStageRequest struct {
	Stage        string  `json:"stage"`
	Notes        *string `json:"notes"`
	PublishedURL *string `json:"publishedUrl"`
}

type overrideRequest struct {
	OverriddenBy string `json:"overriddenBy"`
}

func (h *Handlers) createContent(c *gin.Context) {
	var in usecase.CreateContentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.content.CreateContent(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handlers) listContent(c *gin.Context) {
	items, err := h.content.ListContent(c.Request.Context(), c.Query("stage"), c.Query("author"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handlers) getContent(c *gin.Context) {
	item, err := h.content.GetContent(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handlers) editContent(c *gin.Context) {
	var in usecase.EditContentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in.ID = c.Param("id")

	item, err := h.content.EditContent(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handlers) deleteContent(c *gin.Context) {
	if err := h.content.DeleteContent(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) moveStage(c *gin.Context) {
	var req moveStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.content.MoveStage(c.Request.Context(), usecase.MoveStageInput{
		ID:           c.Param("id"),
		Stage:        req.Stage,
		Notes:        req.Notes,
		PublishedURL: req.PublishedURL,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handlers) latestVerification(c *gin.Context) {
	record, err := h.reviews.LatestVerification(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handlers) override(c *gin.Context) {
	var req overrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.reviews.Override(c.Request.Context(), c.Param("id"), req.OverriddenBy)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handlers) history(c *gin.Context) {
	records, err := h.reviews.VerificationHistory(c.Request.Context(), c.Query("author"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handlers) stats(c *gin.Context) {
	stats, err := h.reviews.VerificationStats(c.Request.Context(), c.Query("author"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
