package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/wekeepgrowing/semo-upload/internal/adapter/access"
	httpHandler "github.com/wekeepgrowing/semo-upload/internal/adapter/handler/http"
	eventMessaging "github.com/wekeepgrowing/semo-upload/internal/adapter/messaging"
	"github.com/wekeepgrowing/semo-upload/internal/adapter/repository"
	"github.com/wekeepgrowing/semo-upload/internal/config"
	"github.com/wekeepgrowing/semo-upload/internal/infrastructure/database"
	httpServer "github.com/wekeepgrowing/semo-upload/internal/infrastructure/http"
	"github.com/wekeepgrowing/semo-upload/internal/infrastructure/storage"
	"github.com/wekeepgrowing/semo-upload/internal/middleware/auth"
	"github.com/wekeepgrowing/semo-upload/internal/usecase"
	"github.com/wekeepgrowing/semo-upload/pkg/logger"
	"github.com/wekeepgrowing/semo-upload/pkg/messaging"
	"go.uber.org/zap"
)

func main() {
	// 1. 설정 로드
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("설정 로드 실패: %v", err))
	}

	// 2. 로거 생성
	log, err := logger.NewZapLogger(logger.Config{
		Level:          cfg.Log.Level,
		Format:         cfg.Log.Format,
		Output:         cfg.Log.Output,
		FilePath:       cfg.Log.FilePath,
		Development:    cfg.Server.Debug,
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
	})
	if err != nil {
		panic(fmt.Sprintf("로거 생성 실패: %v", err))
	}
	defer log.Sync()
	log.Info("UPLOAD 서비스 시작")

	// 루트 컨텍스트, 종료 시그널에서 취소됩니다
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. 데이터베이스 연결 및 마이그레이션
	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		log.Fatal("데이터베이스 연결 실패", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, log); err != nil {
			log.Error("데이터베이스 연결 종료 실패", zap.Error(err))
		}
	}()
	if err := database.Migrate(db, log); err != nil {
		log.Fatal("마이그레이션 실패", zap.Error(err))
	}

	// 4. 필드 스키마 및 레포지토리 초기화
	fieldRepo, err := repository.NewFieldRepositoryFromFile(cfg.Upload.SchemaPath)
	if err != nil {
		log.Fatal("필드 스키마 로드 실패", zap.Error(err), zap.String("path", cfg.Upload.SchemaPath))
	}
	repos := database.NewRepositories(db, fieldRepo, log)

	// 5. 파일 저장소 초기화
	store, err := newStore(ctx, cfg)
	if err != nil {
		log.Fatal("파일 저장소 초기화 실패", zap.Error(err))
	}
	log.Info("파일 저장소 초기화 완료", zap.String("driver", cfg.Storage.Driver))

	// 6. 접근 검사기 초기화
	accessChecker, err := newAccessChecker(cfg, log)
	if err != nil {
		log.Fatal("접근 검사기 초기화 실패", zap.Error(err))
	}

	// 7. 업로드 이벤트 발행기 초기화
	var publisher usecase.EventPublisher = usecase.NopEventPublisher{}
	if cfg.Redis.Enabled {
		redisClient, err := messaging.NewRedisClient(messaging.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Redis 연결 실패", zap.Error(err))
		}
		defer redisClient.Close()
		publisher = eventMessaging.NewRedisUploadEventPublisher(redisClient, cfg.Redis.EventsChannel, log)
	}

	// 8. 유스케이스 초기화
	uploader := storage.NewUploader(store, repos.File, cfg.Upload.TempDir, log)
	resources := usecase.NewResourceService(repos, store, cfg.Service.BaseURL)
	uploads := usecase.NewUploadUseCase(repos, accessChecker, uploader, resources, publisher, log)
	purger := usecase.NewTemporaryFilePurger(repos.File, store, cfg.Upload.TemporaryMaxAge, log)

	// 9. HTTP 서버 초기화
	registry := prometheus.NewRegistry()
	httpSrv := httpServer.NewServer(
		httpServer.WithRegistry(registry),
		httpServer.WithPort(cfg.Server.Port),
		httpServer.WithLogger(log),
		httpServer.WithErrorRenderer(httpHandler.RenderError),
		httpServer.WithBodyLimit(cfg.Upload.BodyLimit),
		httpServer.WithAllowOrigins(cfg.Server.AllowOrigins),
	)

	// 10. 핸들러 및 라우트 등록
	uploadHandler := httpHandler.NewUploadHandler(uploads, httpHandler.NewUploadMetrics(registry), log)
	resourceHandler := httpHandler.NewResourceHandler(resources, log)
	httpSrv.RegisterRoutes(func(e *echo.Echo) {
		api := e.Group("/jsonapi", auth.JWTMiddleware(auth.JWTConfig{
			Secret:   cfg.JWT.Secret,
			Logger:   log,
			Optional: cfg.JWT.Optional,
		}))
		resourceHandler.RegisterRoutes(api)
		uploadHandler.RegisterRoutes(api)
	})

	// 11. 임시 파일 정리 시작
	go purger.Run(ctx, cfg.Upload.PurgeInterval)

	// 12. HTTP 서버 시작
	go func() {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP 서버 에러", zap.Error(err))
			stop()
		}
	}()
	log.Info("서버 실행 중...", zap.Int("http_port", cfg.Server.Port))

	// 13. 종료 시그널 대기
	<-ctx.Done()
	log.Info("서버 종료 중...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP 서버 종료 실패", zap.Error(err))
	}

	log.Info("서버 정상 종료")
}

// newStore 설정된 드라이버의 파일 저장소를 생성합니다
func newStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case "s3":
		opts := storage.S3Options{
			Region:        cfg.Storage.S3.Region,
			Bucket:        cfg.Storage.S3.Bucket,
			AccessKey:     cfg.Storage.S3.AccessKey,
			SecretKey:     cfg.Storage.S3.SecretKey,
			Endpoint:      cfg.Storage.S3.Endpoint,
			PublicBaseURL: cfg.Storage.S3.PublicBaseURL,
			Prefix:        cfg.Storage.S3.Prefix,
		}
		client, err := storage.NewS3Client(ctx, opts)
		if err != nil {
			return nil, err
		}
		return storage.NewS3Store(client, opts), nil
	default:
		if err := os.MkdirAll(cfg.Storage.Local.Root, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage root: %w", err)
		}
		return storage.NewLocalStore(cfg.Storage.Local.Root, cfg.Storage.Local.BaseURL), nil
	}
}

// newAccessChecker 설정된 드라이버의 접근 검사기를 생성합니다
func newAccessChecker(cfg *config.Config, log *zap.Logger) (usecase.AccessChecker, error) {
	if cfg.Access.Driver == "spicedb" {
		client, err := access.NewSpiceDBClient(cfg.Access.SpiceDB.Address, cfg.Access.SpiceDB.Token, log)
		if err != nil {
			return nil, err
		}
		return access.NewSpiceDBAccessChecker(client, log), nil
	}
	return access.NewPolicyAccessChecker(cfg.Access.Policy.LockedFields), nil
}
