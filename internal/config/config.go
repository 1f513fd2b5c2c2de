package config

import (
	"errors"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"sync"
	"time"
	"unicode"

	"electronicos-api/internal/logger"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var ErrParsingConfig = errors.New("failed to parse environment variables into config")

type Config struct {
	AppName                string        `env:"APP_NAME" envDefault:"electronicos-api"`
	AppPort                string        `env:"PORT" envDefault:"3000"`
	LogLevel               string        `env:"LOG_LEVEL" envDefault:"info"`
	MongoURI               string        `env:"MONGO_URI,required,notEmpty"`
	MongoDBName            string        `env:"MONGO_DB_NAME" envDefault:"electronicos"`
	MongoCollection        string        `env:"MONGO_COLLECTION" envDefault:"electronicos"`
	MongoPerRequest        bool          `env:"MONGO_PER_REQUEST" envDefault:"false"`
	MongoConnectTimeout    time.Duration `env:"MONGO_CONNECT_TIMEOUT" envDefault:"10s"`
	MongoPingTimeout       time.Duration `env:"MONGO_PING_TIMEOUT" envDefault:"5s"`
	MongoMaxPoolSize       uint64        `env:"MONGO_MAX_POOL_SIZE" envDefault:"100"`
	RemoteLogHttpURI       string        `env:"REMOTE_LOG_HTTP_URI"`
	RemoteTraceRpcURI      string        `env:"REMOTE_TRACE_RPC_URI"`
	RemoteProfilingHttpURI string        `env:"REMOTE_PROFILING_HTTP_URI"`
	TraceStdout            bool          `env:"TRACE_STDOUT" envDefault:"false"`
}

// SafeConfig is the loggable projection of Config, without credentials.
type SafeConfig struct {
	AppName                string `json:"app_name"`
	AppPort                string `json:"app_port"`
	LogLevel               string `json:"log_level"`
	MongoDBName            string `json:"mongo_db_name"`
	MongoCollection        string `json:"mongo_collection"`
	MongoPerRequest        bool   `json:"mongo_per_request"`
	MongoConnectTimeout    string `json:"mongo_connect_timeout"`
	MongoPingTimeout       string `json:"mongo_ping_timeout"`
	MongoMaxPoolSize       uint64 `json:"mongo_max_pool_size"`
	RemoteLogHttpURI       string `json:"remote_log_http_uri"`
	RemoteTraceRpcURI      string `json:"remote_trace_rpc_uri"`
	RemoteProfilingHttpURI string `json:"remote_profiling_http_uri"`
	TraceStdout            bool   `json:"trace_stdout"`
}

// ClientConfig drives cmd/http-client.
type ClientConfig struct {
	AppName    string        `env:"APP_NAME" envDefault:"electronicos-client"`
	APIBaseURL string        `env:"API_BASE_URL" envDefault:"http://localhost:3000"`
	Timeout    time.Duration `env:"CLIENT_TIMEOUT" envDefault:"5s"`
	Codigo     int           `env:"CLIENT_SMOKE_CODIGO" envDefault:"101"`
}

func toSnake(s string) string {
	var out strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 && s[i-1] != '_' {
				out.WriteRune('_')
			}
			out.WriteRune(unicode.ToLower(r))
		} else {
			out.WriteRune(r)
		}
	}
	return out.String()
}

// StructAttrs("data", cfg) ➜ []slog.Attr{ slog.String("data.app_port", "3000"), ... }
func StructAttrs(prefix string, s any) []slog.Attr {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	t := v.Type()

	attrs := make([]slog.Attr, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		key := prefix + "." + jsonKey(f)

		switch v.Field(i).Kind() {
		case reflect.String:
			attrs = append(attrs, slog.String(key, v.Field(i).String()))
		case reflect.Int, reflect.Int64, reflect.Int32:
			attrs = append(attrs, slog.Int64(key, v.Field(i).Int()))
		case reflect.Uint, reflect.Uint64, reflect.Uint32:
			attrs = append(attrs, slog.Uint64(key, v.Field(i).Uint()))
		case reflect.Bool:
			attrs = append(attrs, slog.Bool(key, v.Field(i).Bool()))
		default:
			attrs = append(attrs, slog.Any(key, v.Field(i).Interface()))
		}
	}
	return attrs
}

// jsonKey prefers the json tag and falls back to snake_case of the field name.
func jsonKey(f reflect.StructField) string {
	if tag := f.Tag.Get("json"); tag != "" {
		return strings.Split(tag, ",")[0]
	}
	return toSnake(f.Name)
}

func (c *Config) ToSafeConfig() SafeConfig {
	return SafeConfig{
		AppName:                c.AppName,
		AppPort:                c.AppPort,
		LogLevel:               c.LogLevel,
		MongoDBName:            c.MongoDBName,
		MongoCollection:        c.MongoCollection,
		MongoPerRequest:        c.MongoPerRequest,
		MongoConnectTimeout:    c.MongoConnectTimeout.String(),
		MongoPingTimeout:       c.MongoPingTimeout.String(),
		MongoMaxPoolSize:       c.MongoMaxPoolSize,
		RemoteLogHttpURI:       c.RemoteLogHttpURI,
		RemoteTraceRpcURI:      c.RemoteTraceRpcURI,
		RemoteProfilingHttpURI: c.RemoteProfilingHttpURI,
		TraceStdout:            c.TraceStdout,
	}
}

var (
	log        = logger.Instance()
	dotenvOnce sync.Once

	configInstance *Config
	configOnce     sync.Once
)

func loadDotenv() {
	dotenvOnce.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Warn("No .env file found, using system environment variables")
		}
	})
}

// Load parses the server configuration from the environment.
func Load() (*Config, error) {
	loadDotenv()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, errors.Join(ErrParsingConfig, err)
	}
	return &cfg, nil
}

// LoadClient parses the smoke client configuration from the environment.
func LoadClient() (*ClientConfig, error) {
	loadDotenv()

	var cfg ClientConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, errors.Join(ErrParsingConfig, err)
	}
	return &cfg, nil
}

// Instance loads the configuration once and exits the process when it is invalid.
func Instance() *Config {
	configOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			log.Error("Invalid configuration", slog.String("error", err.Error()))
			os.Exit(1)
		}

		if cfg.RemoteLogHttpURI == "" {
			log.Warn("Missing REMOTE_LOG_HTTP_URI will skip sending log")
		}
		if cfg.RemoteTraceRpcURI == "" {
			log.Warn("Missing REMOTE_TRACE_RPC_URI will skip sending trace")
		}
		if cfg.RemoteProfilingHttpURI == "" {
			log.Warn("Missing REMOTE_PROFILING_HTTP_URI will skip sending profiling")
		}

		attrs := StructAttrs("data", cfg.ToSafeConfig())
		anyAttrs := make([]any, len(attrs))
		for i, a := range attrs {
			anyAttrs[i] = a
		}
		log.Info("Configuration loaded successfully", anyAttrs...)

		configInstance = cfg
	})

	return configInstance
}
