package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"thermarun/internal/logger"
	"thermarun/internal/sensors"
)

// rawConfig is used for JSON unmarshaling with duration strings.
type rawConfig struct {
	Backend             string                `json:"Backend"`
	TemperatureFeatures []sensors.FeatureSpec `json:"TemperatureFeatures"`
	FanFeatures         []sensors.FeatureSpec `json:"FanFeatures"`
	Intervals           rawIntervalsConfig    `json:"Intervals"`
	Events              rawEventsConfig       `json:"Events"`
	Logging             *logger.Config        `json:"Logging"`
}

type rawIntervalsConfig struct {
	HotPoll   string `json:"HotPoll"`
	CoolPoll  string `json:"CoolPoll"`
	FanReport string `json:"FanReport"`
}

type rawEventsConfig struct {
	File  *FileSinkConfig     `json:"File"`
	Kafka *rawKafkaSinkConfig `json:"Kafka"`
	Redis *RedisSinkConfig    `json:"Redis"`

	SOCKSProxy SOCKSConfig `json:"SocksProxy"`
}

type rawKafkaSinkConfig struct {
	Enabled       bool     `json:"Enabled"`
	Brokers       []string `json:"Brokers"`
	Topic         string   `json:"Topic"`
	Compression   string   `json:"Compression"`
	RequiredAcks  int      `json:"RequiredAcks"`
	Timeout       string   `json:"Timeout"`
	EnableTLS     bool     `json:"EnableTLS"`
	TLSCAFile     string   `json:"TLSCAFile"`
	SASLEnabled   bool     `json:"SASLEnabled"`
	SASLMechanism string   `json:"SASLMechanism"`
	SASLUser      string   `json:"SASLUser"`
	SASLPassword  string   `json:"SASLPassword"`
}

// Load reads configuration from the given file path, merged over defaults.
// An empty path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses configuration from JSON bytes, merged over defaults.
func Parse(data []byte) (*Config, error) {
	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := DefaultConfig()

	if raw.Backend != "" {
		cfg.Backend = raw.Backend
	}
	if raw.TemperatureFeatures != nil {
		cfg.TemperatureFeatures = raw.TemperatureFeatures
	}
	if raw.FanFeatures != nil {
		cfg.FanFeatures = raw.FanFeatures
	}
	if raw.Logging != nil {
		cfg.Logging = *raw.Logging
	}

	if err := mergeIntervals(&cfg.Intervals, raw.Intervals); err != nil {
		return nil, err
	}
	if err := mergeEvents(&cfg.Events, &raw.Events); err != nil {
		return nil, err
	}

	return cfg, nil
}

func mergeIntervals(dst *IntervalsConfig, raw rawIntervalsConfig) error {
	for _, field := range []struct {
		name  string
		value string
		out   *time.Duration
	}{
		{"Intervals.HotPoll", raw.HotPoll, &dst.HotPoll},
		{"Intervals.CoolPoll", raw.CoolPoll, &dst.CoolPoll},
		{"Intervals.FanReport", raw.FanReport, &dst.FanReport},
	} {
		if field.value == "" {
			continue
		}
		d, err := time.ParseDuration(field.value)
		if err != nil {
			return fmt.Errorf("parse %s %q: %w", field.name, field.value, err)
		}
		*field.out = d
	}
	return nil
}

func mergeEvents(dst *EventsConfig, raw *rawEventsConfig) error {
	if raw.File != nil {
		merged := dst.File
		merged.Enabled = raw.File.Enabled
		if raw.File.FilePath != "" {
			merged.FilePath = raw.File.FilePath
		}
		if raw.File.MaxSizeMB > 0 {
			merged.MaxSizeMB = raw.File.MaxSizeMB
		}
		if raw.File.MaxBackups > 0 {
			merged.MaxBackups = raw.File.MaxBackups
		}
		dst.File = merged
	}
	if raw.Kafka != nil {
		merged := dst.Kafka
		merged.Enabled = raw.Kafka.Enabled
		if raw.Kafka.Brokers != nil {
			merged.Brokers = raw.Kafka.Brokers
		}
		if raw.Kafka.Topic != "" {
			merged.Topic = raw.Kafka.Topic
		}
		if raw.Kafka.Compression != "" {
			merged.Compression = raw.Kafka.Compression
		}
		if raw.Kafka.RequiredAcks != 0 {
			merged.RequiredAcks = raw.Kafka.RequiredAcks
		}
		if raw.Kafka.Timeout != "" {
			d, err := time.ParseDuration(raw.Kafka.Timeout)
			if err != nil {
				return fmt.Errorf("parse Events.Kafka.Timeout %q: %w", raw.Kafka.Timeout, err)
			}
			merged.Timeout = d
		}
		merged.EnableTLS = raw.Kafka.EnableTLS
		merged.TLSCAFile = raw.Kafka.TLSCAFile
		merged.SASLEnabled = raw.Kafka.SASLEnabled
		merged.SASLMechanism = raw.Kafka.SASLMechanism
		merged.SASLUser = raw.Kafka.SASLUser
		merged.SASLPassword = raw.Kafka.SASLPassword
		dst.Kafka = merged
	}
	if raw.Redis != nil {
		merged := dst.Redis
		merged.Enabled = raw.Redis.Enabled
		if raw.Redis.Addr != "" {
			merged.Addr = raw.Redis.Addr
		}
		merged.Password = raw.Redis.Password
		merged.DB = raw.Redis.DB
		if raw.Redis.Key != "" {
			merged.Key = raw.Redis.Key
		}
		if raw.Redis.MaxLen > 0 {
			merged.MaxLen = raw.Redis.MaxLen
		}
		dst.Redis = merged
	}
	dst.SOCKSProxy = raw.SOCKSProxy
	return nil
}
