package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	DataDir  string `mapstructure:"DATA_DIR"`
	DemoMode bool   `mapstructure:"DEMO_MODE"`

	// Chain configuration. The RPC URL, token address, merchant address and
	// decimals are required before the first payment or verification; they
	// are validated lazily by the services that need them.
	ArcRPCURL         string `mapstructure:"ARC_RPC_URL"`
	ArcChainID        int64  `mapstructure:"ARC_CHAIN_ID"`
	ArcExplorerBase   string `mapstructure:"ARC_EXPLORER_BASE"`
	ServicePrivateKey string `mapstructure:"SERVICE_PRIVATE_KEY"`
	MerchantAddress   string `mapstructure:"MERCHANT_ADDRESS"`
	USDCAddress       string `mapstructure:"USDC_ADDRESS"`
	USDCDecimals      int    `mapstructure:"USDC_DECIMALS"`

	NetworkLabel string `mapstructure:"NETWORK_LABEL"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DATA_DIR", "data")
	viper.SetDefault("DEMO_MODE", false)
	viper.SetDefault("ARC_EXPLORER_BASE", "https://testnet.arcscan.app")
	viper.SetDefault("ARC_CHAIN_ID", 0)
	viper.SetDefault("USDC_DECIMALS", 6)
	viper.SetDefault("NETWORK_LABEL", "Arc Testnet")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
