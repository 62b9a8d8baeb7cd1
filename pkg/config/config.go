package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the settlement worker configuration
type Config struct {
	Server      ServerConfig     `mapstructure:"server"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Source      ChainConfig      `mapstructure:"source"`
	Destination ChainConfig      `mapstructure:"destination"`
	Settlement  SettlementConfig `mapstructure:"settlement"`
	Signer      SignerConfig     `mapstructure:"signer"`
	Oracle      OracleConfig     `mapstructure:"oracle"`
	Monitoring  MonitoringConfig `mapstructure:"monitoring"`
	Logging     LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// ChainConfig contains settings for one EVM chain endpoint
type ChainConfig struct {
	RPCURL          string        `mapstructure:"rpc_url"`
	ChainID         int64         `mapstructure:"chain_id"`
	Contract        string        `mapstructure:"contract"`
	PrivateKey      string        `mapstructure:"private_key"`
	GasLimit        uint64        `mapstructure:"gas_limit"`
	MaxGasPrice     string        `mapstructure:"max_gas_price"`
	PollingInterval time.Duration `mapstructure:"polling_interval"`
}

// SettlementConfig contains the worker loop settings
type SettlementConfig struct {
	ListenInterval      time.Duration `mapstructure:"listen_interval"`
	ExecuteInterval     time.Duration `mapstructure:"execute_interval"`
	SweepInterval       time.Duration `mapstructure:"sweep_interval"`
	ReceiptTimeout      time.Duration `mapstructure:"receipt_timeout"`
	MaxMintAttempts     int           `mapstructure:"max_mint_attempts"`
	MintBatchSize       int           `mapstructure:"mint_batch_size"`
	MintFunction        string        `mapstructure:"mint_function"`
	MetadataBaseURI     string        `mapstructure:"metadata_base_uri"`
	RetryUnknownAuction bool          `mapstructure:"retry_unknown_auction"`
	ReconcileGrace      time.Duration `mapstructure:"reconcile_grace"`
}

// SignerConfig contains the bid attestation signer settings
type SignerConfig struct {
	PrivateKey     string        `mapstructure:"private_key"`
	ValidityWindow time.Duration `mapstructure:"validity_window"`
}

// OracleConfig contains the price oracle settings
type OracleConfig struct {
	TokenFile string `mapstructure:"token_file"`
}

// MonitoringConfig contains monitoring and metrics settings
type MonitoringConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	MetricsPort int  `mapstructure:"metrics_port"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "60s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.ssl_mode", "disable")

	// Chain defaults
	viper.SetDefault("source.polling_interval", "15s")
	viper.SetDefault("destination.polling_interval", "15s")
	viper.SetDefault("destination.gas_limit", 300000)

	// Settlement defaults
	viper.SetDefault("settlement.listen_interval", "30s")
	viper.SetDefault("settlement.execute_interval", "30s")
	viper.SetDefault("settlement.sweep_interval", "5m")
	viper.SetDefault("settlement.receipt_timeout", "2m")
	viper.SetDefault("settlement.max_mint_attempts", 3)
	viper.SetDefault("settlement.mint_batch_size", 5)
	viper.SetDefault("settlement.mint_function", "single")
	viper.SetDefault("settlement.metadata_base_uri", "ipfs://")
	viper.SetDefault("settlement.retry_unknown_auction", false)
	viper.SetDefault("settlement.reconcile_grace", "5m")

	// Signer defaults
	viper.SetDefault("signer.validity_window", "300s")

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)
	viper.SetDefault("monitoring.metrics_port", 9090)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output_path", "stdout")
}

func validate(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if config.Source.RPCURL == "" {
		return fmt.Errorf("source.rpc_url is required")
	}
	if config.Source.Contract == "" {
		return fmt.Errorf("source.contract is required")
	}
	if config.Destination.RPCURL == "" {
		return fmt.Errorf("destination.rpc_url is required")
	}
	if config.Destination.Contract == "" {
		return fmt.Errorf("destination.contract is required")
	}
	if config.Destination.PrivateKey == "" {
		return fmt.Errorf("destination.private_key is required")
	}
	if config.Signer.PrivateKey == "" {
		return fmt.Errorf("signer.private_key is required")
	}
	return nil
}

// GetConnectionString returns a PostgreSQL connection string
func (c *DatabaseConfig) GetConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
