package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host               string
	Port               int
	ReadTimeoutSec     int
	WriteTimeoutSec    int
	IdleTimeoutSec     int
	RequestTimeoutSec  int
	ShutdownTimeoutSec int
	MaxConcurrent      int64
	MaxBodyKB          int64
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
}

type LogFile struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
	LeewaySec         int
}

type DB struct {
	Driver             string // memory | sqlite | postgres | mysql
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
	SlowThresholdMs    int
}

type Breaker struct {
	MaxRequests uint32
	IntervalSec int
	TimeoutSec  int
	MinRequests uint32
	FailureRate float64
}

type Geocode struct {
	Provider   string // google | static
	APIKey     string
	BaseURL    string
	TimeoutSec int
	StaticLat  float64
	StaticLng  float64
	Breaker    Breaker
}

type GCS struct {
	Bucket          string
	Prefix          string
	CredentialsFile string
}

type Assets struct {
	Driver      string // local | gcs
	Dir         string
	URLPrefix   string
	MaxUploadKB int64
	GCS         GCS
}

type CORS struct {
	Origins []string
}

type Config struct {
	App     App
	Log     Log
	JWT     JWT
	DB      DB
	Geocode Geocode
	Assets  Assets
	CORS    CORS
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "places-api")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 5000)
	v.SetDefault("app.http.readTimeoutSec", 15)
	v.SetDefault("app.http.writeTimeoutSec", 30)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("app.http.requestTimeoutSec", 10)
	v.SetDefault("app.http.shutdownTimeoutSec", 10)
	v.SetDefault("app.http.maxConcurrent", 300)
	v.SetDefault("app.http.maxBodyKB", 2048)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file.enable", false)
	v.SetDefault("log.file.filename", "logs/app.log")
	v.SetDefault("log.file.maxSizeMB", 100)
	v.SetDefault("log.file.maxBackups", 7)
	v.SetDefault("log.file.maxAgeDays", 30)
	v.SetDefault("log.file.compress", true)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "places-api")
	v.SetDefault("jwt.accessTokenTTLMin", 60)
	v.SetDefault("jwt.leewaySec", 0)

	v.SetDefault("db.driver", "memory")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.username", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.maxOpenConns", 20)
	v.SetDefault("db.maxIdleConns", 10)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("db.autoMigrate", true)
	v.SetDefault("db.logLevel", "warn")
	v.SetDefault("db.slowThresholdMs", 200)

	v.SetDefault("geocode.provider", "static")
	v.SetDefault("geocode.apiKey", "")
	v.SetDefault("geocode.baseURL", "")
	v.SetDefault("geocode.timeoutSec", 5)
	v.SetDefault("geocode.staticLat", 40.7484405)
	v.SetDefault("geocode.staticLng", -73.9878531)
	v.SetDefault("geocode.breaker.maxRequests", 1)
	v.SetDefault("geocode.breaker.intervalSec", 60)
	v.SetDefault("geocode.breaker.timeoutSec", 30)
	v.SetDefault("geocode.breaker.minRequests", 5)
	v.SetDefault("geocode.breaker.failureRate", 0.6)

	v.SetDefault("assets.driver", "local")
	v.SetDefault("assets.dir", "uploads/images")
	v.SetDefault("assets.urlPrefix", "uploads/images")
	v.SetDefault("assets.maxUploadKB", 500)
	v.SetDefault("assets.gcs.bucket", "")
	v.SetDefault("assets.gcs.prefix", "images")
	v.SetDefault("assets.gcs.credentialsFile", "")

	v.SetDefault("cors.origins", []string{"*"})
}

// Load 读取 YAML（path 为空时取 CONFIG_PATH，再退到 ./configs/config.local.yaml），
// 环境变量 APP_<SECTION>_<KEY> 覆盖；文件不存在时只用默认值 + 环境变量
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	}
	switch c.DB.Driver {
	case "memory":
	case "sqlite", "postgres", "mysql":
		if c.DB.DSN == "" {
			errs = append(errs, fmt.Errorf("db.dsn is required for driver %s", c.DB.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("db.driver %q not supported", c.DB.Driver))
	}
	switch c.Geocode.Provider {
	case "static":
	case "google":
		if c.Geocode.APIKey == "" {
			errs = append(errs, errors.New("geocode.apiKey is required for provider google"))
		}
	default:
		errs = append(errs, fmt.Errorf("geocode.provider %q not supported", c.Geocode.Provider))
	}
	switch c.Assets.Driver {
	case "local":
	case "gcs":
		if c.Assets.GCS.Bucket == "" {
			errs = append(errs, errors.New("assets.gcs.bucket is required for driver gcs"))
		}
	default:
		errs = append(errs, fmt.Errorf("assets.driver %q not supported", c.Assets.Driver))
	}
	return errors.Join(errs...)
}

func Seconds(n int) time.Duration { return time.Duration(n) * time.Second }

func (j JWT) TTL() time.Duration { return time.Duration(j.AccessTokenTTLMin) * time.Minute }
