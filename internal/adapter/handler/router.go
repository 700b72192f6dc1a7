package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/meeting-scribe/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg            *config.Config
	meetingHandler *MeetingHandler
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, meetingHandler *MeetingHandler) *Router {
	return &Router{
		cfg:            cfg,
		meetingHandler: meetingHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)

	v1 := e.Group("/v1")
	rt.setupMeetingRoutes(v1)
}

func (rt *Router) setupMeetingRoutes(g *echo.Group) {
	meetings := g.Group("/meetings")

	meetings.POST("/upload", rt.meetingHandler.Upload)
	meetings.POST("/text", rt.meetingHandler.CreateFromText)
	meetings.GET("", rt.meetingHandler.List)
	meetings.GET("/:id", rt.meetingHandler.Get)
	meetings.POST("/:id/retry", rt.meetingHandler.Retry)
	meetings.POST("/:id/summarize", rt.meetingHandler.Summarize)
	meetings.GET("/:id/transcript", rt.meetingHandler.GetTranscript)
	meetings.GET("/:id/summary", rt.meetingHandler.GetSummary)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
