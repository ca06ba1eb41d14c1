// Package config loads the application configuration from YAML with
// viper and validates it.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Packs       PacksConfig       `mapstructure:"packs"`
	Registry    RegistryConfig    `mapstructure:"registry"`
	Profile     ProfileConfig     `mapstructure:"profile"`
	Translation TranslationConfig `mapstructure:"translation"`
	Builder     BuilderConfig     `mapstructure:"builder"`
}

type PacksConfig struct {
	// Directory holds one subdirectory per installed language pack.
	Directory string `mapstructure:"directory"`
	// DownloadTimeoutSeconds bounds a whole pack download.
	DownloadTimeoutSeconds int `mapstructure:"download_timeout_seconds"`
}

type RegistryConfig struct {
	// URL of the published registry.json.
	URL string `mapstructure:"url" validate:"omitempty,url"`
	// CacheFile is the local copy consulted when offline.
	CacheFile string `mapstructure:"cache_file"`
}

type ProfileConfig struct {
	File string `mapstructure:"file"`
}

type TranslationConfig struct {
	// EngineURL is the local translation engine daemon.
	EngineURL     string `mapstructure:"engine_url" validate:"omitempty,url"`
	TimeoutMillis int    `mapstructure:"timeout_millis" validate:"omitempty,gt=0"`
	// HubPenalty is subtracted from the quality score of hub-routed
	// translations. A tunable placeholder constant with no empirical
	// basis; see the resolver documentation.
	HubPenalty float64 `mapstructure:"hub_penalty"`
}

type BuilderConfig struct {
	SourcesFile     string `mapstructure:"sources_file" validate:"omitempty,file"`
	OutputDirectory string `mapstructure:"output_directory"`
	BaseURL         string `mapstructure:"base_url" validate:"omitempty,url"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/polybook")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("packs.directory", "packs")
	v.SetDefault("packs.download_timeout_seconds", 300)
	v.SetDefault("registry.cache_file", filepath.Join("packs", "registry.json"))
	v.SetDefault("profile.file", filepath.Join("packs", "profile.json"))
	v.SetDefault("translation.engine_url", "http://127.0.0.1:8955")
	v.SetDefault("translation.timeout_millis", 10000)
	v.SetDefault("translation.hub_penalty", 0.1)
	v.SetDefault("builder.output_directory", "dist")

	// The registry host differs between staging and production devices,
	// so it is an environment concern rather than a config-file one.
	if err := v.BindEnv("registry.url", "POLYBOOK_REGISTRY_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind POLYBOOK_REGISTRY_URL environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}
