package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds runtime settings for the scanner, the proxy integration and
// the API server.
type Config struct {
	ListenAddr   string
	HistoryFile  string
	ReportsDir   string
	ReconTimeout time.Duration

	ProxyHost string
	ProxyPort int

	BurpAPIURL string
	BurpAPIKey string

	BrowserEnabled bool
	ChromePath     string

	LogLevel string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen_addr", "0.0.0.0:5000")
	v.SetDefault("history_file", "logs/scan_history.json")
	v.SetDefault("reports_dir", "reports")
	v.SetDefault("recon_timeout", "30s")
	v.SetDefault("proxy_host", "127.0.0.1")
	v.SetDefault("proxy_port", 8080)
	v.SetDefault("browser_enabled", true)
	v.SetDefault("log_level", "info")
}

// Load reads configuration from an optional websectester.yaml in the working
// directory and from WEBSECTESTER_* environment variables. Environment
// variables win over the file.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("websectester")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("WEBSECTESTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	return &Config{
		ListenAddr:     v.GetString("listen_addr"),
		HistoryFile:    v.GetString("history_file"),
		ReportsDir:     v.GetString("reports_dir"),
		ReconTimeout:   v.GetDuration("recon_timeout"),
		ProxyHost:      v.GetString("proxy_host"),
		ProxyPort:      v.GetInt("proxy_port"),
		BurpAPIURL:     v.GetString("burp_api_url"),
		BurpAPIKey:     v.GetString("burp_api_key"),
		BrowserEnabled: v.GetBool("browser_enabled"),
		ChromePath:     v.GetString("chrome_path"),
		LogLevel:       v.GetString("log_level"),
	}, nil
}
