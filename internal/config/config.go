package config

import (
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	StoreDriver string // "postgres" or "memory"
	DatabaseURL string

	JWTSecret       string
	SessionTTLHours int

	GatewayKeyID  string
	GatewaySecret string

	DepositMin  int64
	DepositMax  int64
	WithdrawMin int64
}

// Load reads configuration from the environment, with a best-effort .env
// file load first.
func Load() *Config {
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetDefault("port", "8080")
	viper.SetDefault("store_driver", "postgres")
	viper.SetDefault("database_url", "")
	viper.SetDefault("jwt_secret", "")
	viper.SetDefault("session_ttl_hours", 72)
	viper.SetDefault("gateway_key_id", "")
	viper.SetDefault("gateway_secret", "")
	viper.SetDefault("deposit_min", 10)
	viper.SetDefault("deposit_max", 5000)
	viper.SetDefault("withdraw_min", 100)

	return &Config{
		Port:            viper.GetString("port"),
		StoreDriver:     viper.GetString("store_driver"),
		DatabaseURL:     viper.GetString("database_url"),
		JWTSecret:       viper.GetString("jwt_secret"),
		SessionTTLHours: viper.GetInt("session_ttl_hours"),
		GatewayKeyID:    viper.GetString("gateway_key_id"),
		GatewaySecret:   viper.GetString("gateway_secret"),
		DepositMin:      viper.GetInt64("deposit_min"),
		DepositMax:      viper.GetInt64("deposit_max"),
		WithdrawMin:     viper.GetInt64("withdraw_min"),
	}
}
