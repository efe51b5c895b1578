package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/smolyakov/huddle/internal/config"
	"github.com/smolyakov/huddle/internal/identity"
	"github.com/smolyakov/huddle/internal/service/files"
)

// NewServer builds the HTTP server with all routes registered.
func NewServer(provider identity.Provider, filesSvc *files.Service, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	tokenHandlers := NewTokenHandlers(provider, logger)
	fileHandlers := NewFileHandlers(filesSvc, cfg.MaxUploadBytes, logger)

	router.GET("/health", healthHandler)
	router.GET("/userToken", tokenHandlers.IssueToken)

	groups := router.Group("/groups/:groupId")
	groups.Use(IdentityMiddleware(logger))
	{
		groups.POST("/user", fileHandlers.RegisterMember)
		groups.GET("/files", fileHandlers.ListFiles)
		groups.GET("/files/:fileId", fileHandlers.DownloadFile)
		groups.POST("/files", fileHandlers.UploadFile)
	}

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
