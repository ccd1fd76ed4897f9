package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/pdfdesk/backend/internal/logging"
	"github.com/pdfdesk/backend/internal/model"
	"github.com/pdfdesk/backend/internal/service"
)

type RouterDeps struct {
	Auth    *service.AuthService
	Users   *service.UserService
	Uploads *service.UploadService
	Logger  *slog.Logger

	AllowedOrigins []string
	// FilesDir is served at /files when uploads are stored on local disk.
	FilesDir string
}

func NewRouter(deps RouterDeps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logging.RequestLogger(logger))
	router.Use(CORSMiddleware(deps.AllowedOrigins, true))

	router.GET("/ping", Ping)
	router.GET("/", Root)
	router.GET("/openapi.json", OpenAPIDoc)

	if deps.FilesDir != "" {
		router.Static("/files", deps.FilesDir)
	}

	anyRole := AuthMiddleware(service.NewGate(deps.Auth, model.RoleUser, model.RoleAdmin), logger)
	userOnly := AuthMiddleware(service.NewGate(deps.Auth, model.RoleUser), logger)
	adminOnly := AuthMiddleware(service.NewGate(deps.Auth, model.RoleAdmin), logger)

	authHandler := NewAuthHandler(deps.Auth, logger)
	auth := router.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/change-password", anyRole, authHandler.ChangePassword)
		auth.POST("/refresh-token", authHandler.RefreshToken)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)
	}

	userHandler := NewUserHandler(deps.Users, logger)
	user := router.Group("/user")
	{
		user.POST("/create-student", userHandler.CreateStudent)
		user.GET("/students", userHandler.ListStudents)
		user.GET("/student/:id", userOnly, userHandler.GetStudent)
		user.POST("/change-status/:id", adminOnly, userHandler.ChangeStatus)
		user.GET("/me", anyRole, userHandler.Me)
	}

	uploadHandler := NewUploadHandler(deps.Uploads, logger)
	upload := router.Group("/upload")
	{
		upload.POST("/upload-file", uploadHandler.UploadFile)
		upload.GET("/get-files", uploadHandler.GetFiles)
	}

	return router
}
