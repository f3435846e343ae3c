// Package config loads process-level configuration from the
// environment (teacher idiom: getEnv/getEnvInt with defaults) and
// sanitizes an incoming EngineRequest into a runnable Scenario.
package config

import (
	"os"
	"strconv"
	"strings"
)

// AppConfig is process-level (not per-request) configuration.
type AppConfig struct {
	HTTPBind      string
	LogDir        string
	KafkaBrokers  []string
	SummaryTopic  string
	MQTTBroker    string
	MQTTTopicPref string
	MetricsBind   string
	MaxConcurrentRuns int
}

// LoadEnv reads AppConfig from the environment, defaulting anything
// unset.
func LoadEnv() AppConfig {
	return AppConfig{
		HTTPBind:          getEnv("HTTP_BIND", ":8080"),
		LogDir:            getEnv("LOG_DIR", "./logs"),
		KafkaBrokers:      splitCSV(os.Getenv("KAFKA_BROKERS")),
		SummaryTopic:      getEnv("SUMMARY_TOPIC", "distilltwin.run.summary"),
		MQTTBroker:        os.Getenv("MQTT_BROKER"),
		MQTTTopicPref:     getEnv("MQTT_TOPIC_PREFIX", "distilltwin/events"),
		MetricsBind:       getEnv("METRICS_BIND", ":9090"),
		MaxConcurrentRuns: getEnvInt("MAX_CONCURRENT_RUNS", 8),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if i, err := strconv.Atoi(v); err == nil {
		return i
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
