package api

import (
	"github.com/gin-gonic/gin"

	"github.com/mocksmith/mocksmith/internal/http/api/handlers"
	"github.com/mocksmith/mocksmith/internal/mock"
	"github.com/mocksmith/mocksmith/internal/store"
)

// RegisterRoutes registers the mock API routes on the engine.
func RegisterRoutes(r *gin.Engine, service *mock.Service, streamer handlers.StreamFunc, mockStore *store.MockStore) {
	if r == nil || service == nil {
		return
	}

	healthHandler := handlers.NewHealthHandler(mockStore)
	r.GET("/healthz", healthHandler.Healthz)

	mockHandler := handlers.NewMockHandler(service, streamer)
	apiGroup := r.Group("/api")
	apiGroup.POST("/mocks", mockHandler.Generate)
	apiGroup.POST("/mocks/stream", mockHandler.GenerateStream)
	apiGroup.POST("/mocks/persist", mockHandler.Persist)
	apiGroup.GET("/:id", mockHandler.Read)
}
