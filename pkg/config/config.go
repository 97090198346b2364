package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	Gateway  GatewayConfig  `yaml:"gateway"`
	Platform PlatformConfig `yaml:"platform"`
	WebSocket WebSocketConfig `yaml:"websocket"`
}

type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`
}

type DatabaseConfig struct {
	Host            string `yaml:"host"`
	Port            string `yaml:"port"`
	User            string `yaml:"user"`
	DBName          string `yaml:"name"`
	Password        string `yaml:"password"`
	SSLMode         string `yaml:"ssl_mode"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

type GatewayConfig struct {
	CallbackToken string `yaml:"callback_token"`
}

// PlatformConfig replaces the legacy singleton settings row: fees, limits and
// split percentages are loaded once at startup and handed to the services.
type PlatformConfig struct {
	CashInFeePercent     float64 `yaml:"cash_in_fee_percent"`
	CashOutFeePercent    float64 `yaml:"cash_out_fee_percent"`
	CashOutFeeFixedCents int64   `yaml:"cash_out_fee_fixed_cents"`
	MinDepositCents      int64   `yaml:"min_deposit_cents"`
	MinWithdrawalCents   int64   `yaml:"min_withdrawal_cents"`
	DefaultManagerSplit  float64 `yaml:"default_manager_split_percent"`
	DefaultAffiliateSplit float64 `yaml:"default_affiliate_split_percent"`
}

type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size"`
	WriteBufferSize int           `yaml:"write_buffer_size"`
	CheckOrigin     bool          `yaml:"check_origin"`
	PingPeriod      time.Duration `yaml:"ping_period"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config.yaml"
	}

	configData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(configData, &config); err != nil {
		return nil, err
	}

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.JWT.Secret = secret
	}
	if token := os.Getenv("GATEWAY_CALLBACK_TOKEN"); token != "" {
		config.Gateway.CallbackToken = token
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		config.Database.Password = password
	}
	if config.JWT.TTL == 0 {
		config.JWT.TTL = 24 * time.Hour
	}

	return &config, nil
}
