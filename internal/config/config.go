package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/wekeepgrowing/semo-upload/pkg/config"
)

// Config 업로드 서비스 설정 구조체
type Config struct {
	Service  Service  `yaml:"service"`
	Server   Server   `yaml:"server"`
	Log      Log      `yaml:"log"`
	Database Database `yaml:"database"`
	Storage  Storage  `yaml:"storage"`
	Upload   Upload   `yaml:"upload"`
	Access   Access   `yaml:"access"`
	JWT      JWT      `yaml:"jwt"`
	Redis    Redis    `yaml:"redis"`
}

// Service 서비스 정보
type Service struct {
	Name    string `yaml:"name" validate:"required"`
	Version string `yaml:"version"`
	// BaseURL JSON:API 링크의 기준 URL
	BaseURL string `yaml:"base_url" validate:"required,url"`
}

// Log 로그 설정
type Log struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format" validate:"omitempty,oneof=json console"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

// Upload 업로드 처리 설정
type Upload struct {
	TempDir         string        `yaml:"temp_dir"`
	SchemaPath      string        `yaml:"schema_path" validate:"required"`
	PurgeInterval   time.Duration `yaml:"purge_interval" validate:"gt=0"`
	TemporaryMaxAge time.Duration `yaml:"temporary_max_age" validate:"gt=0"`
	// BodyLimit 요청 본문 최대 크기 (예: "512M"), 비어 있으면 제한 없음
	BodyLimit string `yaml:"body_limit"`
}

// Access 접근 검사 설정
type Access struct {
	Driver string `yaml:"driver" validate:"oneof=policy spicedb"`
	Policy struct {
		// LockedFields 역할별 수정 불가 필드 ("node.article.field_image")
		LockedFields map[string][]string `yaml:"locked_fields"`
	} `yaml:"policy"`
	SpiceDB struct {
		Address string `yaml:"address"`
		Token   string `yaml:"token"`
	} `yaml:"spicedb"`
}

// JWT 토큰 검증 설정
type JWT struct {
	Secret string `yaml:"secret" validate:"required"`
	// Optional이면 토큰 없는 요청을 익명 계정으로 처리합니다
	Optional bool `yaml:"optional"`
}

// Redis 업로드 이벤트 발행 설정
type Redis struct {
	Enabled       bool   `yaml:"enabled"`
	Address       string `yaml:"address" validate:"required_if=Enabled true"`
	Password      string `yaml:"password"`
	DB            int    `yaml:"db"`
	EventsChannel string `yaml:"events_channel"`
}

// Load 설정 파일 로드
func Load() (*Config, error) {
	// pkg/config 패키지를 사용하여 설정 파일 로드
	cfg, err := config.Load("upload")
	if err != nil {
		return nil, err
	}
	setDefaults(cfg)

	appConfig := &Config{}

	// 서비스 정보
	appConfig.Service.Name = cfg.GetString("service.name")
	appConfig.Service.Version = cfg.GetString("service.version")
	appConfig.Service.BaseURL = cfg.GetString("service.base_url")

	// HTTP 서버 설정
	appConfig.Server.Port = cfg.GetInt("server.port")
	appConfig.Server.Debug = cfg.GetBool("server.debug")
	appConfig.Server.AllowOrigins = cfg.GetStringSlice("server.allow_origins")
	appConfig.Server.ShutdownTimeout = cfg.GetDuration("server.shutdown_timeout")

	// 로그 설정
	appConfig.Log.Level = cfg.GetString("log.level")
	appConfig.Log.Format = cfg.GetString("log.format")
	appConfig.Log.Output = cfg.GetString("log.output")
	appConfig.Log.FilePath = cfg.GetString("log.file_path")

	// 데이터베이스 설정
	appConfig.Database.Host = cfg.GetString("database.host")
	appConfig.Database.Port = cfg.GetInt("database.port")
	appConfig.Database.Name = cfg.GetString("database.name")
	appConfig.Database.User = cfg.GetString("database.user")
	appConfig.Database.Password = cfg.GetString("database.password")
	appConfig.Database.SSLMode = cfg.GetString("database.ssl_mode")
	appConfig.Database.MaxOpenConns = cfg.GetInt("database.max_open_conns")
	appConfig.Database.MaxIdleConns = cfg.GetInt("database.max_idle_conns")
	appConfig.Database.ConnMaxLifetime = cfg.GetDuration("database.conn_max_lifetime")
	appConfig.Database.ConnMaxIdleTime = cfg.GetDuration("database.conn_max_idle_time")
	appConfig.Database.LogLevel = cfg.GetString("database.log_level")
	appConfig.Database.SlowThreshold = cfg.GetDuration("database.slow_threshold")

	// 스토리지 설정
	appConfig.Storage.Driver = cfg.GetString("storage.driver")
	appConfig.Storage.Local.Root = cfg.GetString("storage.local.root")
	appConfig.Storage.Local.BaseURL = cfg.GetString("storage.local.base_url")
	appConfig.Storage.S3.Region = cfg.GetString("storage.s3.region")
	appConfig.Storage.S3.Bucket = cfg.GetString("storage.s3.bucket")
	appConfig.Storage.S3.AccessKey = cfg.GetString("storage.s3.access_key")
	appConfig.Storage.S3.SecretKey = cfg.GetString("storage.s3.secret_key")
	appConfig.Storage.S3.Endpoint = cfg.GetString("storage.s3.endpoint")
	appConfig.Storage.S3.PublicBaseURL = cfg.GetString("storage.s3.public_base_url")
	appConfig.Storage.S3.Prefix = cfg.GetString("storage.s3.prefix")

	// 업로드 설정
	appConfig.Upload.TempDir = cfg.GetString("upload.temp_dir")
	appConfig.Upload.SchemaPath = cfg.GetString("upload.schema_path")
	appConfig.Upload.PurgeInterval = cfg.GetDuration("upload.purge_interval")
	appConfig.Upload.TemporaryMaxAge = cfg.GetDuration("upload.temporary_max_age")
	appConfig.Upload.BodyLimit = cfg.GetString("upload.body_limit")

	// 접근 검사 설정
	appConfig.Access.Driver = cfg.GetString("access.driver")
	appConfig.Access.Policy.LockedFields = stringSliceMap(cfg.GetStringMap("access.policy.locked_fields"))
	appConfig.Access.SpiceDB.Address = cfg.GetString("access.spicedb.address")
	appConfig.Access.SpiceDB.Token = cfg.GetString("access.spicedb.token")

	// JWT 설정
	appConfig.JWT.Secret = cfg.GetString("jwt.secret")
	appConfig.JWT.Optional = cfg.GetBool("jwt.optional")

	// Redis 설정
	appConfig.Redis.Enabled = cfg.GetBool("redis.enabled")
	appConfig.Redis.Address = cfg.GetString("redis.address")
	appConfig.Redis.Password = cfg.GetString("redis.password")
	appConfig.Redis.DB = cfg.GetInt("redis.db")
	appConfig.Redis.EventsChannel = cfg.GetString("redis.events_channel")

	if err := appConfig.Validate(); err != nil {
		return nil, err
	}
	return appConfig, nil
}

// Validate 설정 값 검증
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid upload config: %w", err)
	}
	// 드라이버별 필수 값
	if c.Access.Driver == "spicedb" && c.Access.SpiceDB.Address == "" {
		return fmt.Errorf("invalid upload config: access.spicedb.address is required for the spicedb driver")
	}
	if c.Storage.Driver == "s3" && (c.Storage.S3.Bucket == "" || c.Storage.S3.Region == "") {
		return fmt.Errorf("invalid upload config: storage.s3.bucket and storage.s3.region are required for the s3 driver")
	}
	return nil
}

func setDefaults(cfg config.Config) {
	cfg.SetDefault("service.name", "semo-upload")
	cfg.SetDefault("server.port", 8080)
	cfg.SetDefault("server.allow_origins", []string{"*"})
	cfg.SetDefault("server.shutdown_timeout", "10s")
	cfg.SetDefault("log.level", "info")
	cfg.SetDefault("log.format", "json")
	cfg.SetDefault("log.output", "stdout")
	cfg.SetDefault("database.port", 5432)
	cfg.SetDefault("database.ssl_mode", "disable")
	cfg.SetDefault("database.max_open_conns", 25)
	cfg.SetDefault("database.max_idle_conns", 5)
	cfg.SetDefault("database.conn_max_lifetime", "30m")
	cfg.SetDefault("database.conn_max_idle_time", "5m")
	cfg.SetDefault("database.log_level", "warn")
	cfg.SetDefault("database.slow_threshold", "200ms")
	cfg.SetDefault("storage.driver", "local")
	cfg.SetDefault("storage.local.root", "./data/files")
	cfg.SetDefault("upload.purge_interval", "1h")
	cfg.SetDefault("upload.temporary_max_age", "6h")
	cfg.SetDefault("access.driver", "policy")
	cfg.SetDefault("redis.events_channel", "upload.events")
}

// stringSliceMap YAML 맵(역할 → 목록)을 변환합니다
func stringSliceMap(in map[string]interface{}) map[string][]string {
	out := make(map[string][]string, len(in))
	for key, value := range in {
		items, ok := value.([]interface{})
		if !ok {
			continue
		}
		for _, item := range items {
			if s, ok := item.(string); ok {
				out[key] = append(out[key], s)
			}
		}
	}
	return out
}
