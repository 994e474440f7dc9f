package http

import (
	stdhttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ibaimoya/sockchat/internal/chat"
)

// SessionInfo is the read-only view of one live session.
type SessionInfo struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	ConnectedAt time.Time `json:"connected_at"`
	BannedCount int       `json:"banned_count"`
}

// StatusResponse is the body of GET /api/sessions.
type StatusResponse struct {
	Sessions []SessionInfo `json:"sessions"`
	Count    int           `json:"count"`
}

// NewStatusServer builds the HTTP status server. It only reads the
// registry; chat traffic never flows through it.
func NewStatusServer(addr string, reg *chat.Registry, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})
	router.GET("/api/sessions", sessionsHandler(reg))

	return &stdhttp.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func sessionsHandler(reg *chat.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions := reg.Snapshot()

		infos := make([]SessionInfo, 0, len(sessions))
		for _, sess := range sessions {
			infos = append(infos, SessionInfo{
				ID:          sess.ID,
				Username:    sess.Username,
				ConnectedAt: sess.ConnectedAt,
				BannedCount: sess.BanCount(),
			})
		}

		c.JSON(stdhttp.StatusOK, StatusResponse{Sessions: infos, Count: len(infos)})
	}
}

// LoggerMiddleware creates a middleware that logs HTTP requests.
func LoggerMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("http request")
	}
}
