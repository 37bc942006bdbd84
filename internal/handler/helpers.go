package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/oneiro/internal/ai"
	"github.com/xxxsen/oneiro/internal/pkg/errcode"
	appErr "github.com/xxxsen/oneiro/internal/pkg/errors"
	"github.com/xxxsen/oneiro/internal/pkg/response"
)

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, appErr.ErrUnauthorized):
		response.Error(c, errcode.ErrUnauthorized, "unauthorized")
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, errcode.ErrNotFound, "not found")
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, errcode.ErrInvalid, "invalid request")
	case errors.Is(err, appErr.ErrTooMany):
		response.Error(c, errcode.ErrTooMany, "too many requests")
	case errors.Is(err, appErr.ErrCorpusEmpty):
		response.Error(c, errcode.ErrCorpusEmpty, "corpus not built")
	case errors.Is(err, appErr.ErrCorpusBuilding):
		response.Error(c, errcode.ErrCorpusBuilding, "corpus rebuild in progress")
	case errors.Is(err, ai.ErrUnavailable):
		response.Error(c, errcode.ErrAIUnavailable, "ai not available")
	default:
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}
