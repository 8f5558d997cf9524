package welcome_worker_config

import (
	"github.com/NordCoder/Authly/internal/obs"
	"github.com/NordCoder/Authly/internal/service/welcome"
)

type KafkaIn struct {
	Brokers       []string `mapstructure:"brokers"`
	GroupID       string   `mapstructure:"group_id"`
	FromBeginning bool     `mapstructure:"from_beginning"`
}

type Server struct {
	MetricsAddr string `mapstructure:"metrics_addr"`
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

type Config struct {
	In       KafkaIn            `mapstructure:"kafka_in"`
	SMTP     welcome.SMTPConfig `mapstructure:"smtp"`
	Server   Server             `mapstructure:"server"`
	OTEL     OTEL               `mapstructure:"otel"`
	LogLevel string             `mapstructure:"log_level"`
}
