package routes

import (
    "github.com/gin-gonic/gin"

    "github.com/finsight/finserv-docs/api/handlers"
    "github.com/finsight/finserv-docs/api/middleware"
)

// SetupRoutes 配置所有路由
func SetupRoutes(r *gin.Engine, h *handlers.Handlers) {
    // 全局中间件
    r.Use(middleware.CORS())

    r.POST("/upload-pdf/", h.Document.UploadPDF)
    r.GET("/update-summary/:docId", h.Document.UpdateSummary)
    r.POST("/update-summary-with-file/:docId", h.Document.UpdateSummaryWithFile)
    r.GET("/document/:docId", h.Document.GetDocument)
}
