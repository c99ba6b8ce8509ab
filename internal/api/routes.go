package api

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.Engine, s *Server) {
	r.GET("/", s.index)
	r.GET("/health", s.health)
	r.POST("/generate", s.generate)

	api := r.Group("/api")
	{
		api.GET("/teams", s.listTeams)
		api.GET("/qr", s.qr)
	}
}
