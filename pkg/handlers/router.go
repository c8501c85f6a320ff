package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/arnavshah/autohours-api-go/pkg/metrics"
)

const version = "1.0.0"

// Router registers every route on a new gin engine
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.RequestLogger())

	r.StaticFS("/static", h.GetStaticFS())
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Auto-Hours Capacity API",
			"version": version,
		})
	})
	r.GET(h.Config.MetricsPath, metrics.Handler())

	r.GET("/admin", h.AdminInterface)
	r.POST("/admin/login", h.Login)

	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware())
	{
		admin.POST("/keys", h.GenerateKey)
		admin.GET("/keys", h.ListKeys)
		admin.PUT("/keys/:id", h.UpdateKeyLimit)
		admin.DELETE("/keys/:id", h.RevokeKey)
		admin.GET("/usage/:id", h.GetUsage)
	}

	api := r.Group("/api")
	api.Use(h.APIKeyMiddleware())
	{
		api.GET("/usage", h.GetMyUsage)

		api.GET("/departments", h.ListDepartments)
		api.POST("/departments", h.CreateDepartment)
		api.GET("/roles", h.ListRoles)
		api.POST("/roles", h.CreateRole)

		ah := api.Group("/auto-hours")
		ah.GET("/settings", h.GetDepartmentSettings)
		ah.PUT("/settings", h.PutDepartmentSettings)
		ah.POST("/validate", h.ValidateSettings)
		ah.POST("/preview", h.Preview)
		ah.GET("/templates", h.ListTemplates)
		ah.POST("/templates", h.CreateTemplate)
		ah.DELETE("/templates/:id", h.DeleteTemplate)
		ah.GET("/templates/:id/settings", h.GetTemplateSettings)
		ah.PUT("/templates/:id/settings", h.PutTemplateSettings)
		ah.GET("/templates/:id/export.csv", h.ExportTemplateCSV)
		ah.POST("/templates/:id/import.csv", h.ImportTemplateCSV)

		gs := api.Group("/grid/sessions")
		gs.POST("", h.OpenGridSession)
		gs.GET("/:id", h.GetGridSession)
		gs.DELETE("/:id", h.CloseGridSession)
		gs.POST("/:id/events", h.ApplyGridEvents)
		gs.POST("/:id/save", h.SaveGridSession)
		gs.POST("/:id/reload", h.ReloadGridSession)
	}

	return r
}

// HTTPHandler is the router behind CORS when CORS_ORIGINS is set
func (h *Handler) HTTPHandler() http.Handler {
	r := h.Router()
	if len(h.Config.CORSOrigins) == 0 {
		return r
	}
	return cors.New(cors.Options{
		AllowedOrigins: h.Config.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(r)
}
