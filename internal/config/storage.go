package config

// Storage 파일 저장소 설정
type Storage struct {
	Driver string `yaml:"driver" validate:"oneof=local s3"`
	Local  struct {
		Root    string `yaml:"root"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"local"`
	S3 struct {
		Region        string `yaml:"region"`
		Bucket        string `yaml:"bucket"`
		AccessKey     string `yaml:"access_key"`
		SecretKey     string `yaml:"secret_key"`
		Endpoint      string `yaml:"endpoint"`
		PublicBaseURL string `yaml:"public_base_url"`
		Prefix        string `yaml:"prefix"`
	} `yaml:"s3"`
}
