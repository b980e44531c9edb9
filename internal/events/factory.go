package events

import (
	"fmt"

	"thermarun/internal/config"
)

// BuildSinks creates every enabled extra sink. A sink that cannot be built is
// an error at startup; a sink that later fails at emit time is only logged.
func BuildSinks(cfg config.EventsConfig) ([]Sink, error) {
	var sinks []Sink

	if cfg.File.Enabled {
		s, err := NewFileSink(cfg.File)
		if err != nil {
			closeAll(sinks)
			return nil, fmt.Errorf("file sink: %w", err)
		}
		sinks = append(sinks, s)
	}
	if cfg.Kafka.Enabled {
		s, err := NewKafkaSink(cfg.Kafka, cfg.SOCKSProxy)
		if err != nil {
			closeAll(sinks)
			return nil, fmt.Errorf("kafka sink: %w", err)
		}
		sinks = append(sinks, s)
	}
	if cfg.Redis.Enabled {
		s, err := NewRedisSink(cfg.Redis, cfg.SOCKSProxy)
		if err != nil {
			closeAll(sinks)
			return nil, fmt.Errorf("redis sink: %w", err)
		}
		sinks = append(sinks, s)
	}

	return sinks, nil
}

func closeAll(sinks []Sink) {
	for _, s := range sinks {
		_ = s.Close()
	}
}
