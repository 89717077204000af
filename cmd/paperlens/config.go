// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/paperlens/internal/convert"
	"github.com/pdiddy/paperlens/internal/normalize"
	"github.com/pdiddy/paperlens/pkg/types"
)

const envPrefix = "PAPERLENS"

var viperInstance = viper.New()

// setDefaults registers every config key so environment variables such as
// PAPERLENS_INFERENCE_TOKEN are picked up by Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("inference.endpoint", "https://api-inference.huggingface.co/models")
	v.SetDefault("inference.token", "")
	v.SetDefault("inference.summary_model", "facebook/bart-large-cnn")
	v.SetDefault("inference.tldr_model", "")
	v.SetDefault("inference.recommendation_model", "google/flan-t5-large")
	v.SetDefault("inference.max_attempts", 3)
	v.SetDefault("inference.timeout", 30*time.Second)
	v.SetDefault("inference.word_budget", normalize.DefaultWordBudget)

	v.SetDefault("blob.backend", string(types.BlobFS))
	v.SetDefault("blob.root", ".")
	v.SetDefault("blob.converter", string(types.ConverterPDFText))
	v.SetDefault("blob.runtime", "")
	v.SetDefault("blob.markitdown_image", convert.DefaultMarkitdownImage)
	v.SetDefault("blob.cache_size", 64)
	v.SetDefault("blob.s3.endpoint", "")
	v.SetDefault("blob.s3.region", "")
	v.SetDefault("blob.s3.access_key", "")
	v.SetDefault("blob.s3.secret_key", "")
	v.SetDefault("blob.s3.bucket", "")
	v.SetDefault("blob.s3.use_ssl", true)

	v.SetDefault("history.enabled", false)
	v.SetDefault("history.path", filepath.Join(".paperlens", "history.db"))

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_body_bytes", 4<<20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	configure(viperInstance, cfgFile)
}

// configure points v at the config file and the environment.
func configure(v *viper.Viper, cfgFile string) {
	setDefaults(v)
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("paperlens")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "paperlens"))
		}
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// loadConfig reads the config file, if any, and decodes every section.
func loadConfig(v *viper.Viper) (types.Config, error) {
	if err := v.ReadInConfig(); err != nil {
		// An explicit --config path that does not exist is still an error.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return types.Config{}, fmt.Errorf("reading config %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// newLogger builds a production JSON logger, or a console logger when
// development is set.
func newLogger(cfg types.LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		zc.Level = level
	}
	l, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return l, nil
}
