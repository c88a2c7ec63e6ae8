package cmd

import (
	"strings"

	ollamaconstants "github.com/danilofalcao/llama-relay/internal/constants/ollama"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultHost     = "0.0.0.0"
	defaultPort     = "3000"
	defaultLogLevel = "info"
)

type BackendConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
}

type config struct {
	Ollama   BackendConfig `mapstructure:"ollama"`
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Loglevel string        `mapstructure:"log_level"`
	LogFile  string        `mapstructure:"log_file"`
	Timeout  string        `mapstructure:"timeout"`
}

// loadConfig resolves configuration from, in decreasing priority: flags,
// environment, config file, defaults. A missing config file is fine; one that
// was named explicitly but cannot be read is not.
func loadConfig(args []string) (config, error) {
	var cfg config

	flags := pflag.NewFlagSet("llama-relay", pflag.ContinueOnError)
	configPath := flags.StringP("config", "c", "", "sets the config file location e.g. $HOME/relay-config.yaml")
	flags.String("host", defaultHost, "interface to listen on")
	flags.String("port", defaultPort, "port to listen on")
	flags.String("log-level", defaultLogLevel, "one of trace, debug, info, warn, error")
	if err := flags.Parse(args); err != nil {
		return cfg, errors.Wrap(err, "error parsing flags")
	}

	// Have to use custom key delimiter to allow for models with periods in the name
	v := viper.NewWithOptions(
		viper.KeyDelimiter("#"),
		viper.EnvKeyReplacer(strings.NewReplacer("#", "_")),
	)

	if *configPath != "" {
		v.SetConfigFile(*configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetDefault("host", defaultHost)
	v.SetDefault("port", defaultPort)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("log_file", "")
	v.SetDefault("timeout", "0")
	v.SetDefault("ollama#endpoint", ollamaconstants.DefaultEndpoint)
	v.SetDefault("ollama#model", ollamaconstants.DefaultModel)

	// Flags only override when set on the command line
	for key, name := range map[string]string{
		"host":      "host",
		"port":      "port",
		"log_level": "log-level",
	} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return cfg, errors.Wrapf(err, "error binding flag %s", name)
		}
	}

	// Alias the previous env syntax to the new
	if err := v.BindEnv("ollama#endpoint", "OLLAMA_ENDPOINT", "OLLAMA_API_ENDPOINT"); err != nil {
		return cfg, errors.Wrap(err, "error binding env")
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if *configPath != "" || !errors.As(err, &notFound) {
			return cfg, errors.Wrap(err, "error reading config file")
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, errors.Wrap(err, "error unmarshaling config")
	}
	return cfg, nil
}
