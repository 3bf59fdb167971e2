package config

import "time"

// Server HTTP 서버 설정
type Server struct {
	Port            int           `yaml:"port" validate:"gte=0,lte=65535"`
	Debug           bool          `yaml:"debug"`
	AllowOrigins    []string      `yaml:"allow_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}
