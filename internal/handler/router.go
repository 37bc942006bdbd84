package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/oneiro/internal/middleware"
)

type RouterDeps struct {
	Interpret   *InterpretHandler
	Journal     *JournalHandler
	Corpus      *CorpusHandler
	AdminSecret []byte
	RateWindow  time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	interpretGroup := api.Group("")
	interpretGroup.Use(middleware.RateLimit(deps.RateWindow))
	interpretGroup.POST("/interpret", deps.Interpret.Interpret)
	interpretGroup.POST("/followup", deps.Interpret.Followup)
	interpretGroup.POST("/dreams/:id/followup", deps.Interpret.Followup)

	api.GET("/dreams", deps.Journal.List)
	api.GET("/dreams/:id", deps.Journal.Get)
	api.GET("/patterns", deps.Journal.Patterns)
	api.GET("/corpus/stats", deps.Corpus.Stats)

	adminGroup := api.Group("/admin")
	adminGroup.Use(middleware.AdminAuth(deps.AdminSecret))
	adminGroup.POST("/corpus/rebuild", deps.Corpus.Rebuild)
}
