package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/ssrocks/rishop-backend/internal/config"
	"github.com/ssrocks/rishop-backend/internal/handler"
	appmw "github.com/ssrocks/rishop-backend/internal/middleware"
	"github.com/ssrocks/rishop-backend/internal/reqctx"
	"github.com/ssrocks/rishop-backend/internal/repository"
	"github.com/ssrocks/rishop-backend/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Deps struct {
	DB     *gorm.DB
	Config *config.Config
	Logger *zap.Logger
	// Verifier may be nil when only the development auth header is enabled.
	Verifier appmw.TokenVerifier
	// Images may be nil; uploads are then rejected.
	Images    service.ImageStore
	Clock     func() time.Time
	SHA       string
	BuildTime string
}

type Server struct {
	e *echo.Echo
}

func New(d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := d.Config

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestContext)
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				logger.Warn("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Info("request", fields...)
			return nil
		},
	}))
	if cfg.RequestTimeout > 0 {
		e.Use(middleware.ContextTimeout(cfg.RequestTimeout))
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     corsHeaders(cfg.AuthDevHeader),
		AllowCredentials: true,
		AllowOriginFunc:  allowOrigin(cfg.CORSOriginSuffixes),
	}))

	deps := service.Deps{Logger: logger, Clock: d.Clock}
	repos := repository.NewRepositories(d.DB)
	tx := repository.NewTransactor(d.DB)

	userSvc := service.NewUserService(repos.Users, deps)
	productSvc := service.NewProductService(repos.Products, d.Images, deps)
	convSvc := service.NewConversationService(repos, tx, deps)
	msgSvc := service.NewMessageService(repos, tx, deps)
	orderSvc := service.NewOrderService(repos.Orders)
	notifSvc := service.NewNotificationService(convSvc)

	userHandler := handler.NewUserHandler(userSvc, logger)
	productHandler := handler.NewProductHandler(productSvc, logger)
	convHandler := handler.NewConversationHandler(convSvc, msgSvc, userSvc, productSvc, logger)
	msgHandler := handler.NewMessageHandler(msgSvc, logger)
	orderHandler := handler.NewOrderHandler(orderSvc, logger)
	notifHandler := handler.NewNotificationHandler(notifSvc, cfg.NotificationPollSeconds, logger)

	authMw := appmw.NewAuthMiddleware(d.Verifier, userSvc, cfg.AuthDevHeader, logger)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    d.SHA,
			"build_time": d.BuildTime,
		})
	})

	api := e.Group("/api")
	api.GET("/products", productHandler.List)
	api.GET("/products/:id", productHandler.Get)
	api.GET("/users/:username/public", userHandler.GetPublic)

	auth := authMw.RequireAuth
	api.POST("/products", productHandler.Create, auth)
	api.POST("/products/images", productHandler.UploadImage, auth)
	api.GET("/me", userHandler.Me, auth)
	api.GET("/me/products", productHandler.ListMine, auth)
	api.GET("/me/orders", orderHandler.ListMine, auth)
	api.GET("/me/orders/summary", orderHandler.Summary, auth)
	api.GET("/me/sales", orderHandler.ListSales, auth)

	api.POST("/conversations/initiate", convHandler.Initiate, auth)
	api.GET("/conversations", convHandler.List, auth)
	api.GET("/conversations/:id", convHandler.Get, auth)
	api.POST("/conversations/:id/approve", convHandler.Approve, auth)
	api.POST("/conversations/:id/cancel", convHandler.Cancel, auth)
	api.GET("/conversations/:id/messages", msgHandler.List, auth)
	api.POST("/conversations/:id/messages", msgHandler.Send, auth)
	api.PUT("/conversations/:id/mark-read", msgHandler.MarkRead, auth)
	api.GET("/conversations/:id/messages/search", msgHandler.Search, auth)
	api.GET("/conversations/:id/messages/unread-count", msgHandler.UnreadCount, auth)
	api.GET("/conversations/:id/messages/last", msgHandler.Last, auth)
	api.GET("/conversations/:id/messages/type/:type", msgHandler.ListByType, auth)

	api.GET("/notifications", notifHandler.Get, auth)

	return &Server{e: e}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

func (s *Server) Handler() http.Handler {
	return s.e
}

// requestContext copies echo's request id into the request context for service logs.
func requestContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		rid := c.Response().Header().Get(echo.HeaderXRequestID)
		if rid != "" {
			c.SetRequest(c.Request().WithContext(reqctx.WithRequestID(c.Request().Context(), rid)))
		}
		return next(c)
	}
}

func corsHeaders(devHeader string) []string {
	headers := []string{"Content-Type", "Authorization"}
	if devHeader != "" {
		headers = append(headers, devHeader)
	}
	return headers
}

func allowOrigin(suffixes []string) func(origin string) (bool, error) {
	return func(origin string) (bool, error) {
		low := strings.ToLower(origin)
		if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
			strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
			return true, nil
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false, nil
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return false, nil
		}
		host := strings.ToLower(u.Hostname())
		for _, suffix := range suffixes {
			suffix = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(suffix), "."))
			if suffix == "" {
				continue
			}
			if host == suffix || strings.HasSuffix(host, "."+suffix) {
				return true, nil
			}
		}
		return false, nil
	}
}
