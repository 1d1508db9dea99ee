package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Config holds application configuration
type Config struct {
	Port        string
	MaxFileSize int64
	Logger      *logrus.Logger
}

func SetupRoutes(r *gin.Engine, config *Config) {
	apiGroup := r.Group("/api/pdf")
	{
		apiGroup.POST("/inspect", func(c *gin.Context) { HandleInspect(c, config) })
		apiGroup.POST("/parse-spec", func(c *gin.Context) { HandleParseSpec(c, config) })
		apiGroup.POST("/merge", func(c *gin.Context) { HandleMerge(c, config) })
		apiGroup.POST("/export-selections", func(c *gin.Context) { HandleExportSelections(c, config) })
		apiGroup.GET("/syntax", HandleSpecSyntax)
	}
}
