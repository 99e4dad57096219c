package cfg

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"neurodetect/internal/common"
)

type Settings struct {
	ListenPort       int
	MetricsPort      int
	PredictTimeout   time.Duration
	DataPath         string
	UploadDir        string
	MaxUploadBytes   int64
	QDAModelPath     string
	TabNetModelPath  string
	UseCleanedSignal bool
}

type ConfigFile struct {
	Server struct {
		ListenPort     int    `yaml:"listenPort"`
		MetricsPort    int    `yaml:"metricsPort"`
		PredictTimeout string `yaml:"predictTimeout"`
	} `yaml:"server"`

	Storage struct {
		DataPath       string `yaml:"dataPath"`
		UploadDir      string `yaml:"uploadDir"`
		MaxUploadBytes int64  `yaml:"maxUploadBytes"`
	} `yaml:"storage"`

	Models struct {
		QDAPath    string `yaml:"qdaPath"`
		TabNetPath string `yaml:"tabnetPath"`
	} `yaml:"models"`

	Pipeline struct {
		UseCleanedSignal bool `yaml:"useCleanedSignal"`
	} `yaml:"pipeline"`
}

func Load() (Settings, error) {
	// Try to load from YAML file first
	if configPath := os.Getenv(common.EnvConfigFile); configPath != "" {
		return loadFromYAML(configPath)
	}

	// Fallback to environment variables
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	predictTimeout, err := time.ParseDuration(config.Server.PredictTimeout)
	if err != nil {
		predictTimeout = 30 * time.Second
	}
	if v := os.Getenv(common.EnvPredictTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			predictTimeout = d
		}
	}

	maxUpload := config.Storage.MaxUploadBytes
	if maxUpload == 0 {
		maxUpload = 16 << 20
	}

	settings := Settings{
		ListenPort:       getIntFromEnvOrConfig(common.EnvListenPort, config.Server.ListenPort, common.DefaultListenPort),
		MetricsPort:      getIntFromEnvOrConfig(common.EnvMetricsPort, config.Server.MetricsPort, common.DefaultMetricsPort),
		PredictTimeout:   predictTimeout,
		DataPath:         getEnvOrDefault(common.EnvDataPath, orDefault(config.Storage.DataPath, "data")),
		UploadDir:        getEnvOrDefault(common.EnvUploadDir, orDefault(config.Storage.UploadDir, common.DefaultUploadDir)),
		MaxUploadBytes:   maxUpload,
		QDAModelPath:     getEnvOrDefault(common.EnvQDAModelPath, orDefault(config.Models.QDAPath, common.DefaultQDAModelPath)),
		TabNetModelPath:  getEnvOrDefault(common.EnvTabNetModelPath, orDefault(config.Models.TabNetPath, common.DefaultTabNetModelPath)),
		UseCleanedSignal: getBoolFromEnvOrConfig(common.EnvUseCleanedSignal, config.Pipeline.UseCleanedSignal),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		ListenPort:       getIntOrDefault(common.EnvListenPort, common.DefaultListenPort),
		MetricsPort:      getIntOrDefault(common.EnvMetricsPort, common.DefaultMetricsPort),
		PredictTimeout:   getDurationOrDefault(common.EnvPredictTimeout, 30*time.Second),
		DataPath:         getEnvOrDefault(common.EnvDataPath, "data"),
		UploadDir:        getEnvOrDefault(common.EnvUploadDir, common.DefaultUploadDir),
		MaxUploadBytes:   16 << 20,
		QDAModelPath:     getEnvOrDefault(common.EnvQDAModelPath, common.DefaultQDAModelPath),
		TabNetModelPath:  getEnvOrDefault(common.EnvTabNetModelPath, common.DefaultTabNetModelPath),
		UseCleanedSignal: getBoolOrDefault(common.EnvUseCleanedSignal, false),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue, defaultValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

func getBoolFromEnvOrConfig(key string, configValue bool) bool {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseBool(env); err == nil {
			return val
		}
	}
	return configValue
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

// validateSettings performs validation of configuration values
func validateSettings(settings *Settings) error {
	if settings.ListenPort < common.MinPort || settings.ListenPort > common.MaxPort {
		return fmt.Errorf("listen port must be between %d and %d, got %d", common.MinPort, common.MaxPort, settings.ListenPort)
	}
	if settings.MetricsPort < common.MinPort || settings.MetricsPort > common.MaxPort {
		return fmt.Errorf("metrics port must be between %d and %d, got %d", common.MinPort, common.MaxPort, settings.MetricsPort)
	}
	if settings.ListenPort == settings.MetricsPort {
		return fmt.Errorf("listen and metrics ports must differ, both are %d", settings.ListenPort)
	}

	if settings.PredictTimeout < time.Second || settings.PredictTimeout > 5*time.Minute {
		return fmt.Errorf("predict timeout must be between 1s and 5m, got %v", settings.PredictTimeout)
	}

	if settings.MaxUploadBytes <= 0 || settings.MaxUploadBytes > 256<<20 {
		return fmt.Errorf("max upload size must be between 1 byte and 256MiB, got %d", settings.MaxUploadBytes)
	}

	if settings.DataPath == "" {
		return fmt.Errorf("data path cannot be empty")
	}
	if settings.UploadDir == "" {
		return fmt.Errorf("upload directory cannot be empty")
	}
	if settings.QDAModelPath == "" || settings.TabNetModelPath == "" {
		return fmt.Errorf("model paths cannot be empty")
	}

	return nil
}
