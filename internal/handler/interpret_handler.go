package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/oneiro/internal/model"
	"github.com/xxxsen/oneiro/internal/pkg/errcode"
	"github.com/xxxsen/oneiro/internal/pkg/response"
	"github.com/xxxsen/oneiro/internal/service"
)

type InterpretHandler struct {
	interpret *service.InterpretService
}

func NewInterpretHandler(interpret *service.InterpretService) *InterpretHandler {
	return &InterpretHandler{interpret: interpret}
}

type interpretRequest struct {
	DreamText   string            `json:"dream_text"`
	UserContext model.UserContext `json:"user_context"`
	Strategy    string            `json:"strategy"`
}

type followupRequest struct {
	DreamID  int64  `json:"dream_id"`
	Question string `json:"question"`
}

func (h *InterpretHandler) Interpret(c *gin.Context) {
	var req interpretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	entry, err := h.interpret.Interpret(c.Request.Context(), req.DreamText, req.UserContext, req.Strategy)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, entry)
}

func (h *InterpretHandler) Followup(c *gin.Context) {
	var req followupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.DreamID <= 0 {
		// allow passing the id in the path form too
		if id, err := strconv.ParseInt(c.Param("id"), 10, 64); err == nil {
			req.DreamID = id
		}
	}
	result, err := h.interpret.Followup(c.Request.Context(), req.DreamID, req.Question)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}
