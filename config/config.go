// server/config/config.go
package config

import (
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // "debug" or "release"
}

type MongoConfig struct {
	URI    string `mapstructure:"uri"`
	DBName string `mapstructure:"dbName"`
}

type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	Expiration string `mapstructure:"expiration"` // e.g. "168h"
}

type UploadConfig struct {
	Dir       string `mapstructure:"dir"`       // root of the local upload area
	BaseURL   string `mapstructure:"baseURL"`   // public prefix, e.g. "/uploads"
	MaxSizeMB int64  `mapstructure:"maxSizeMB"` // per-file cap for expense bills
}

type StorageConfig struct {
	Backend string `mapstructure:"backend"` // "local" or "s3"
}

type S3Config struct {
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	AccessKeyID      string `mapstructure:"accessKeyID"`
	SecretAccessKey  string `mapstructure:"secretAccessKey"`
	CloudFrontDomain string `mapstructure:"cloudFrontDomain"`
}

type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Mongo   MongoConfig   `mapstructure:"mongo"`
	JWT     JWTConfig     `mapstructure:"jwt"`
	Upload  UploadConfig  `mapstructure:"upload"`
	Storage StorageConfig `mapstructure:"storage"`
	S3      S3Config      `mapstructure:"s3"`
	Log     LogConfig     `mapstructure:"log"`
}

// LoadConfig reads configuration from file and overrides it with environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()

	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.mode", "SERVER_MODE")
	viper.BindEnv("mongo.uri", "MONGO_URI")
	viper.BindEnv("mongo.dbName", "MONGO_DBNAME")
	viper.BindEnv("jwt.secret", "JWT_SECRET")
	viper.BindEnv("jwt.expiration", "JWT_EXPIRATION")
	viper.BindEnv("upload.dir", "UPLOAD_DIR")
	viper.BindEnv("upload.baseURL", "UPLOAD_BASE_URL")
	viper.BindEnv("upload.maxSizeMB", "UPLOAD_MAX_SIZE_MB")
	viper.BindEnv("storage.backend", "STORAGE_BACKEND")
	viper.BindEnv("s3.bucket", "S3_BUCKET")
	viper.BindEnv("s3.region", "S3_REGION")
	viper.BindEnv("s3.accessKeyID", "S3_ACCESS_KEY_ID")
	viper.BindEnv("s3.secretAccessKey", "S3_SECRET_ACCESS_KEY")
	viper.BindEnv("s3.cloudFrontDomain", "S3_CLOUDFRONT_DOMAIN")
	viper.BindEnv("log.file", "LOG_FILE")
	viper.BindEnv("log.level", "LOG_LEVEL")

	viper.SetDefault("server.port", "5000")
	viper.SetDefault("server.mode", "release")
	viper.SetDefault("jwt.expiration", "168h")
	viper.SetDefault("upload.dir", "./uploads")
	viper.SetDefault("upload.baseURL", "/uploads")
	viper.SetDefault("upload.maxSizeMB", 10)
	viper.SetDefault("storage.backend", "local")
	viper.SetDefault("log.file", "./logs/app.log")
	viper.SetDefault("log.level", "info")

	// The config file is optional; env vars alone are enough.
	err = viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	return
}
