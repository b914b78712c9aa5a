package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"fire-base/api/handlers"
	"fire-base/api/middleware"
	_ "fire-base/docs"
	"fire-base/services"
	"fire-base/store"
)

const credentialPath = "/api/v1/credential"

type Deps struct {
	Store       *store.Store
	Ideas       *services.IdeaService
	Credentials *services.CredentialService
	Suggestions *services.SuggestionService
	// Quota 가 nil 이면 status 응답에 남은 호출 수가 빠진다.
	Quota handlers.QuotaReporter

	// HTTPMetrics 와 MetricsHandler 는 선택 사항이다.
	HTTPMetrics    middleware.HTTPRecorder
	MetricsHandler http.Handler

	// Ping 은 저장소 연결 상태를 확인한다. nil 이면 항상 ok.
	Ping func(ctx context.Context) error
}

func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// 요청 바디에 API 키가 담기므로 credential 요청은 바디를 로깅하지 않는다.
	r.Use(middleware.RequestTrace(credentialPath))
	if d.HTTPMetrics != nil {
		r.Use(middleware.RequestMetrics(d.HTTPMetrics))
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		if d.Ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
			defer cancel()
			if err := d.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "storage": "down", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if d.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(d.MetricsHandler))
	}

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// v1 routes
	api := r.Group("/api/v1")
	{
		api.GET("/meta", handlers.GetMetaHandler())
		api.GET("/status", handlers.GetStatusHandler(d.Store, d.Quota))
		api.DELETE("/status/notice", handlers.ClearNoticeHandler(d.Store))

		api.GET("/ideas", handlers.ListIdeasHandler(d.Ideas))
		api.GET("/ideas/template", handlers.GetIdeaTemplateHandler())
		api.POST("/ideas", handlers.CreateIdeaHandler(d.Store))
		api.GET("/ideas/:id", handlers.GetIdeaHandler(d.Store))
		api.PUT("/ideas/:id", handlers.UpdateIdeaHandler(d.Store))
		api.DELETE("/ideas/:id", handlers.DeleteIdeaHandler(d.Store))
		api.POST("/ideas/:id/favorite", handlers.ToggleFavoriteHandler(d.Store))
		api.PUT("/ideas/:id/status", handlers.SetStatusHandler(d.Store))
		api.POST("/ideas/:id/tags", handlers.AddTagHandler(d.Store))
		api.PUT("/ideas/:id/tags/:tag", handlers.RenameTagHandler(d.Store))
		api.DELETE("/ideas/:id/tags/:tag", handlers.RemoveTagHandler(d.Store))
		api.PUT("/ideas/:id/refinements", handlers.SetRefinementHandler(d.Store))
		api.POST("/ideas/:id/select", handlers.SelectIdeaHandler(d.Store))
		api.POST("/ideas/:id/coaching", handlers.CoachingHandler(d.Ideas))
		api.POST("/ideas/:id/image", handlers.GenerateImageHandler(d.Ideas))

		api.GET("/selection", handlers.GetSelectionHandler(d.Store))
		api.DELETE("/selection", handlers.ClearSelectionHandler(d.Store))

		api.POST("/brainstorm", handlers.BrainstormHandler(d.Ideas, d.Store))
		api.GET("/brainstorm/suggestions", handlers.SuggestionsHandler(d.Suggestions))

		api.GET("/credential", handlers.GetCredentialHandler(d.Credentials))
		api.PUT("/credential", handlers.SaveCredentialHandler(d.Credentials))
		api.DELETE("/credential", handlers.ClearCredentialHandler(d.Credentials))
	}

	return r
}
