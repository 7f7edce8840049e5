package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the analysis service
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	Sandbox   SandboxConfig   `mapstructure:"sandbox"`
	Knowledge KnowledgeConfig `mapstructure:"knowledge"`
	Session   SessionConfig   `mapstructure:"session"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug             bool          `mapstructure:"debug"`
	LogLevel          string        `mapstructure:"log_level"`
	MaxProcessingTime time.Duration `mapstructure:"max_processing_time"`
	JWTSecret         string        `mapstructure:"jwt_secret"`
}

// ServerConfig contains HTTP server and auth settings
type ServerConfig struct {
	Address   string `mapstructure:"address"`
	JWTSecret string `mapstructure:"jwt_secret"`
}

// SandboxConfig controls how generated analysis code is executed
type SandboxConfig struct {
	PythonExecutable string        `mapstructure:"python_executable"`
	CodeTimeout      time.Duration `mapstructure:"code_timeout"`
	DataDir          string        `mapstructure:"data_dir"`
	OutputDir        string        `mapstructure:"output_dir"`
	ExecutionDir     string        `mapstructure:"execution_dir"`
	LedgerFile       string        `mapstructure:"ledger_file"`
	PolicyFile       string        `mapstructure:"policy_file"`
}

func (s SandboxConfig) Validate() error {
	if strings.TrimSpace(s.PythonExecutable) == "" {
		return fmt.Errorf("sandbox.python_executable is required")
	}
	if s.CodeTimeout <= 0 {
		return fmt.Errorf("sandbox.code_timeout must be greater than zero")
	}
	if strings.TrimSpace(s.OutputDir) == "" {
		return fmt.Errorf("sandbox.output_dir is required")
	}
	if strings.TrimSpace(s.ExecutionDir) == "" {
		return fmt.Errorf("sandbox.execution_dir is required")
	}
	return nil
}

// KnowledgeConfig points at the JSON knowledge base directory
type KnowledgeConfig struct {
	Dir string `mapstructure:"dir"`
}

// SessionConfig controls session retention and sweeping
type SessionConfig struct {
	TTL       time.Duration `mapstructure:"ttl"`
	SweepCron string        `mapstructure:"sweep_cron"`
}

// StorageConfig contains optional external storage settings
type StorageConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig contains Redis connection settings. Redis is optional; it is
// only used for the distributed sweep lock when running more than one
// instance.
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.Host) != "" && strings.TrimSpace(r.Port) != ""
}

// TelemetryConfig contains telemetry and monitoring settings
type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	MetricsPort  int    `mapstructure:"metrics_port"`
	PeriodicLogs bool   `mapstructure:"periodic_logs"`
	LogFile      string `mapstructure:"log_file"`
}

func (t TelemetryConfig) Validate() error {
	if t.Enabled && t.MetricsPort < 0 {
		return fmt.Errorf("telemetry.metrics_port cannot be negative")
	}
	return nil
}

// LoadConfig loads config from file
func LoadConfig(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("json")

	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("general.max_processing_time", "10m")
	viper.SetDefault("server.address", ":10010")
	viper.SetDefault("sandbox.python_executable", "python3")
	viper.SetDefault("sandbox.code_timeout", "30s")
	viper.SetDefault("sandbox.data_dir", "data")
	viper.SetDefault("sandbox.output_dir", "outputs")
	viper.SetDefault("sandbox.execution_dir", "execution")
	viper.SetDefault("sandbox.ledger_file", "outputs/execution_history.json")
	viper.SetDefault("knowledge.dir", "knowledge_base")
	viper.SetDefault("session.ttl", "2h")
	viper.SetDefault("session.sweep_cron", "0 * * * *")
	viper.SetDefault("telemetry.enabled", true)
	viper.SetDefault("telemetry.periodic_logs", false)

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)
		viper.AddConfigPath(filepath.Join(exeDir, ".."))
		viper.AddConfigPath(filepath.Join(exeDir, "..", "config"))
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("COANALYST")
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)
	viper.AutomaticEnv() // read in environment variables that match (COANALYST_*)

	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	if err := config.Sandbox.Validate(); err != nil {
		panic(err)
	}
	if err := config.Telemetry.Validate(); err != nil {
		panic(err)
	}
	return &config
}
