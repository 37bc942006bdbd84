package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/oneiro/internal/pkg/errcode"
	"github.com/xxxsen/oneiro/internal/pkg/response"
	"github.com/xxxsen/oneiro/internal/service"
)

type JournalHandler struct {
	journal *service.JournalService
}

func NewJournalHandler(journal *service.JournalService) *JournalHandler {
	return &JournalHandler{journal: journal}
}

func (h *JournalHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	entries, err := h.journal.List(c.Request.Context(), limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"dreams": entries})
}

func (h *JournalHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, errcode.ErrInvalid, "invalid dream id")
		return
	}
	entry, err := h.journal.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, entry)
}

func (h *JournalHandler) Patterns(c *gin.Context) {
	report, err := h.journal.Patterns(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, report)
}
