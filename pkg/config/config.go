package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Security  SecurityConfig  `mapstructure:"security"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Reporting ReportingConfig `mapstructure:"reporting"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	MetricsPort int    `mapstructure:"metrics_port"`
}

// SecurityConfig bounds worst-case latency for adversarial input.
type SecurityConfig struct {
	MaxContentBytes     int `mapstructure:"max_content_bytes"`
	MaxNestingDepth     int `mapstructure:"max_nesting_depth"`
	PerformanceBudgetMs int `mapstructure:"performance_budget_ms"`
}

type CacheConfig struct {
	Capacity int `mapstructure:"capacity"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ReportingConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    string `mapstructure:"port"`
	Topic   string `mapstructure:"topic"`
	Workers int    `mapstructure:"workers"`
}

type RateLimitConfig struct {
	ViolationThreshold int `mapstructure:"violation_threshold"`
	WindowSeconds      int `mapstructure:"window_seconds"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

var globalConfig Config

func Load(configPath string) error {
	if err := loadConfigFile(configPath, "config", &globalConfig); err != nil {
		return fmt.Errorf("could not load main config file: %w", err)
	}
	setDefaultValues()
	return nil
}

func loadConfigFile(configPath, fileName string, out interface{}) error {
	viper.SetConfigName(fileName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("config file %s.yaml not found, using only environment variables", fileName)
		}
		return fmt.Errorf("error reading config file %s.yaml: %w", fileName, err)
	}

	if err := viper.Unmarshal(out); err != nil {
		return fmt.Errorf("failed to unmarshal %s config: %w", fileName, err)
	}
	return nil
}

func setDefaultValues() {
	if globalConfig.Server.Port == 0 {
		globalConfig.Server.Port = 8080
	}
	if globalConfig.Server.MetricsPort == 0 {
		globalConfig.Server.MetricsPort = 9090
	}
	if globalConfig.Security.MaxContentBytes == 0 {
		globalConfig.Security.MaxContentBytes = 64 * 1024
	}
	if globalConfig.Security.MaxNestingDepth == 0 {
		globalConfig.Security.MaxNestingDepth = 64
	}
	if globalConfig.Security.PerformanceBudgetMs == 0 {
		globalConfig.Security.PerformanceBudgetMs = 1000
	}
	if globalConfig.Cache.Capacity == 0 {
		globalConfig.Cache.Capacity = 1024
	}
	if globalConfig.RateLimit.ViolationThreshold == 0 {
		globalConfig.RateLimit.ViolationThreshold = 10
	}
	if globalConfig.RateLimit.WindowSeconds == 0 {
		globalConfig.RateLimit.WindowSeconds = 60
	}
	if globalConfig.Reporting.Workers == 0 {
		globalConfig.Reporting.Workers = 2
	}
}

func GetConfig() *Config {
	return &globalConfig
}
