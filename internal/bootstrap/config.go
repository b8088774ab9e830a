package bootstrap

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort           string        `mapstructure:"SERVER_PORT"`
	GrpcPort             string        `mapstructure:"GRPC_PORT"`
	RedisUrl             string        `mapstructure:"REDIS_URL"`
	MongoUri             string        `mapstructure:"MONGO_URI"`
	MongoDatabase        string        `mapstructure:"MONGO_DATABASE"`
	IsLocalCors          bool          `mapstructure:"LOCAL_CORS"`
	PageLimitCollections int           `mapstructure:"PAGE_LIMIT_COLLECTIONS"`
	StrictParsing        bool          `mapstructure:"STRICT_PARSING"`
	MaxSgfBytes          int64         `mapstructure:"MAX_SGF_BYTES"`
	CacheTTL             time.Duration `mapstructure:"CACHE_TTL"`
	LogLevel             string        `mapstructure:"LOG_LEVEL"`
	Storage              string        `mapstructure:"STORAGE"`
	ImportRoot           string        `mapstructure:"IMPORT_ROOT"`
}

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

var defaults = map[string]any{
	"SERVER_PORT":            "8080",
	"GRPC_PORT":              "8082",
	"REDIS_URL":              "localhost:6379",
	"MONGO_URI":              "mongodb://localhost:27017",
	"MONGO_DATABASE":         "sgfkit",
	"LOCAL_CORS":             false,
	"PAGE_LIMIT_COLLECTIONS": 20,
	"STRICT_PARSING":         true,
	"MAX_SGF_BYTES":          1 << 20,
	"CACHE_TTL":              "1h",
	"LOG_LEVEL":              "info",
	"STORAGE":                StorageMongo,
	"IMPORT_ROOT":            "",
}

// Setup reads cfgPath (a .env file) when it exists. Environment variables
// override the file, defaults fill whatever is left.
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if cfgPath != "" {
		if _, err := os.Stat(cfgPath); err == nil {
			v.SetConfigFile(cfgPath)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, err
			}
		}
	}

	var cfg Config

	err := v.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	if cfg.PageLimitCollections <= 0 {
		cfg.PageLimitCollections = defaults["PAGE_LIMIT_COLLECTIONS"].(int)
	}

	return &cfg, nil
}
