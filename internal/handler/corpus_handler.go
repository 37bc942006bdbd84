package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/oneiro/internal/pkg/response"
	"github.com/xxxsen/oneiro/internal/service"
)

type CorpusHandler struct {
	corpus *service.CorpusService
}

func NewCorpusHandler(corpus *service.CorpusService) *CorpusHandler {
	return &CorpusHandler{corpus: corpus}
}

func (h *CorpusHandler) Stats(c *gin.Context) {
	stats, err := h.corpus.Stats(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, stats)
}

// Rebuild re-indexes the whole corpus. The call is synchronous: the response
// reports the final chunk count.
func (h *CorpusHandler) Rebuild(c *gin.Context) {
	count, err := h.corpus.Rebuild(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"chunks": count})
}
