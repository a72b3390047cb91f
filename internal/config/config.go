package config

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	issuanceconfig "github.com/openmint/issuer-node/modules/issuance/config"
	"github.com/openmint/issuer-node/pkg/logger"
	"github.com/openmint/issuer-node/pkg/logger/slogx"
	"github.com/openmint/issuer-node/pkg/middleware/requestcontext"
	"github.com/openmint/issuer-node/pkg/middleware/requestlogger"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	configOnce sync.Once
	config     = &Config{
		Logger: logger.Config{
			Output: "TEXT",
		},
		HTTPServer: HTTPServer{
			Port: 8080,
		},
	}
)

type Config struct {
	Logger     logger.Config `mapstructure:"logger"`
	HTTPServer HTTPServer    `mapstructure:"http_server"`
	APIOnly    bool          `mapstructure:"api_only"`
	Modules    Modules       `mapstructure:"modules"`
}

type HTTPServer struct {
	Port      int                               `mapstructure:"port"`
	Logger    requestlogger.Config              `mapstructure:"logger"`
	RequestIP requestcontext.WithClientIPConfig `mapstructure:"request_ip"`
}

type Modules struct {
	Issuance issuanceconfig.Config `mapstructure:"issuance"`
}

// BindPFlag binds a command-line flag to a configuration key.
func BindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		logger.Panic("Failed to bind flag to configuration", slogx.String("key", key), slogx.Error(err))
	}
}

// Parse parses the configuration from the given file (or ./config.yaml if
// empty) and environment variables. Subsequent calls return the same value.
func Parse(configFile string) Config {
	ctx := logger.WithContext(context.Background(), slog.String("package", "config"))
	configOnce.Do(func() {
		if configFile != "" {
			viper.SetConfigFile(configFile)
		} else {
			viper.AddConfigPath("./")
			viper.SetConfigName("config")
		}

		viper.AutomaticEnv()
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		if err := viper.ReadInConfig(); err != nil {
			var errNotfound viper.ConfigFileNotFoundError
			if errors.As(err, &errNotfound) {
				logger.WarnContext(ctx, "config file not found, use default value", slogx.Error(err))
			} else {
				logger.PanicContext(ctx, "invalid config file", slogx.Error(err))
			}
		}

		if err := viper.Unmarshal(&config); err != nil {
			logger.PanicContext(ctx, "failed to unmarshal config", slogx.Error(err))
		}
		logger.DebugContext(ctx, "loaded config successfully")
	})

	return *config
}

// Load returns the parsed configuration. It parses with defaults if Parse
// has not been called yet.
func Load() Config {
	return Parse("")
}
