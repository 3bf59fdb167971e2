package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/wekeepgrowing/semo-upload/pkg/logger"
	"go.uber.org/zap"
)

// Server HTTP 서버 구조체입니다.
type Server struct {
	echo         *echo.Echo
	logger       *zap.Logger
	port         int
	renderer     logger.ErrorRenderer
	bodyLimit    string
	allowOrigins []string
	registry     *prometheus.Registry
}

// ServerOption Server 생성을 위한 옵션 함수 타입입니다.
type ServerOption func(*Server)

// WithPort 서버 포트를 설정하는 옵션입니다.
func WithPort(port int) ServerOption {
	return func(s *Server) {
		s.port = port
	}
}

// WithLogger 로거를 설정하는 옵션입니다.
func WithLogger(logger *zap.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithErrorRenderer 에러 응답 본문 형식을 설정하는 옵션입니다.
func WithErrorRenderer(renderer logger.ErrorRenderer) ServerOption {
	return func(s *Server) {
		s.renderer = renderer
	}
}

// WithBodyLimit 요청 본문 최대 크기 (예: "512M")
func WithBodyLimit(limit string) ServerOption {
	return func(s *Server) {
		s.bodyLimit = limit
	}
}

// WithAllowOrigins CORS 허용 origin 목록
func WithAllowOrigins(origins []string) ServerOption {
	return func(s *Server) {
		s.allowOrigins = origins
	}
}

// WithRegistry 메트릭 레지스트리를 설정하는 옵션입니다.
// 애플리케이션 지표는 같은 레지스트리에 등록해야 /metrics에 노출됩니다.
func WithRegistry(registry *prometheus.Registry) ServerOption {
	return func(s *Server) {
		s.registry = registry
	}
}

// NewServer HTTP 서버를 생성합니다.
func NewServer(opts ...ServerOption) *Server {
	// 기본 서버 설정
	s := &Server{
		echo:         echo.New(),
		logger:       zap.NewNop(), // 기본은 로깅 없음
		port:         8080,         // 기본 포트
		allowOrigins: []string{"*"},
	}

	// 옵션 적용
	for _, opt := range opts {
		opt(s)
	}

	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Echo 인스턴스 설정
	e := s.echo
	e.HideBanner = true
	e.HidePort = true

	// 로거 설정
	logger.WithEchoLogger(e, s.logger, s.renderer)

	// 미들웨어 설정
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: requestID,
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.allowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			"Content-Disposition",
		},
	}))
	e.Use(logger.NewEchoRequestLogger(s.logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "semo_upload",
		Subsystem:  "http",
		Registerer: s.registry,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health"
		},
	}))
	if s.bodyLimit != "" {
		e.Use(middleware.BodyLimit(s.bodyLimit))
	}

	// 기본 라우트 설정
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status": "healthy",
		})
	})

	// 메트릭 엔드포인트
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: s.registry,
	}))

	return s
}

// requestID 요청 ID 생성. nanoid 실패 시 uuid를 사용합니다.
func requestID() string {
	id, err := gonanoid.New()
	if err != nil {
		return uuid.NewString()
	}
	return id
}

// RegisterRoutes 라우트를 등록하는 메서드입니다.
// 이 메서드는 핸들러를 등록하는 함수를 받아 실행합니다.
func (s *Server) RegisterRoutes(registerFunc func(e *echo.Echo)) {
	registerFunc(s.echo)
}

// Start 서버를 시작합니다.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("HTTP 서버 시작", zap.String("addr", addr))

	return s.echo.Start(addr)
}

// Shutdown 서버를 안전하게 종료합니다.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP 서버 종료 중...")
	return s.echo.Shutdown(ctx)
}

// GetEcho 내부 Echo 인스턴스를 반환합니다.
func (s *Server) GetEcho() *echo.Echo {
	return s.echo
}
