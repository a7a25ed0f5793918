package server

import "github.com/gin-gonic/gin"

func (s *implServer) routes() {
	api := s.router.Group("/api")

	api.GET("/health", s.health)
	api.GET("/stats", s.stats)

	api.GET("/items", s.listItems)
	api.POST("/items", s.uploadItems)
	api.GET("/items/:id", s.getItem)
	api.POST("/items/:id/retry", s.retryItem)
	api.POST("/items/:id/cancel", s.cancelItem)
	api.DELETE("/items/:id", s.removeItem)
	api.GET("/events", s.events)

	api.GET("/history", s.listHistory)
	api.DELETE("/history", s.clearHistory)
	api.DELETE("/history/:id", s.deleteHistory)
	api.GET("/history/:id/export", s.exportHistory)

	if s.deps.Metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.deps.Metrics))
	}
}
