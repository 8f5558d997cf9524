package auth_api_config

import (
	"time"

	"github.com/NordCoder/Authly/internal/obs"
	pg "github.com/NordCoder/Authly/internal/repository/postgres"
	rds "github.com/NordCoder/Authly/internal/repository/redis"
)

type App struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

type Server struct {
	HTTPAddr        string        `mapstructure:"http_addr"`
	MetricsAddr     string        `mapstructure:"metrics_addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	GracefulTimeout time.Duration `mapstructure:"graceful_timeout"`
}

type Kafka struct {
	Brokers []string `mapstructure:"brokers"`
}

type OTEL struct {
	Enable       bool    `mapstructure:"enable"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

func (oc *OTEL) AsOTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:      oc.Enable,
		Endpoint:    oc.OTLPEndpoint,
		ServiceName: oc.ServiceName,
		SampleRatio: oc.SampleRatio,
	}
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type Auth struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AccessTTL      time.Duration `mapstructure:"access_ttl"`
	RefreshTTL     time.Duration `mapstructure:"refresh_ttl"`
	PublishTimeout time.Duration `mapstructure:"publish_timeout"`
}

type Config struct {
	App    App        `mapstructure:"app"`
	Server Server     `mapstructure:"server"`
	DB     pg.Config  `mapstructure:"db"`
	Redis  rds.Config `mapstructure:"redis"`
	Kafka  Kafka      `mapstructure:"kafka"`
	OTEL   OTEL       `mapstructure:"otel"`
	Log    Log        `mapstructure:"log"`
	Auth   Auth       `mapstructure:"auth"`
}

func (c *Config) AsLoggerConfig() *obs.LogConfig {
	return &obs.LogConfig{
		Level:  c.Log.Level,
		Pretty: c.Log.Pretty,
		App:    "authly/" + c.App.Name,
		Env:    c.App.Env,
		Ver:    c.App.Version,
	}
}
