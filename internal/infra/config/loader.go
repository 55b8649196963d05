// Package config loads widgetd's static configuration: the bundle
// location, the widget capability allowlists, transports. All values
// are read once at process start and treated as constants afterwards.
package config

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"widgetd/internal/domain"
)

const (
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable-http"
)

type WidgetConfig struct {
	URI           string
	Name          string
	Description   string
	Domain        string
	PrefersBorder bool
}

type CSPConfig struct {
	ConnectDomains  []string
	ResourceDomains []string
}

type TransportConfig struct {
	Type     string
	HTTPAddr string
	HTTPPath string
}

type ObservabilityConfig struct {
	ListenAddress string
	Enabled       bool
}

type Config struct {
	BundlePath    string
	StorePath     string
	Widget        WidgetConfig
	CSP           CSPConfig
	Transport     TransportConfig
	Observability ObservabilityConfig
}

// Capability derives the static capability descriptor handed to the
// embedding runtime.
func (c Config) Capability() domain.CapabilityDescriptor {
	return domain.CapabilityDescriptor{
		ConnectDomains:  c.CSP.ConnectDomains,
		ResourceDomains: c.CSP.ResourceDomains,
		FrameDomains:    []string{},
		WidgetDomain:    c.Widget.Domain,
		PrefersBorder:   c.Widget.PrefersBorder,
		OutputTemplate:  c.Widget.URI,
	}
}

type rawConfig struct {
	BundlePath string `mapstructure:"bundlePath"`
	StorePath  string `mapstructure:"storePath"`
	Widget     struct {
		URI           string `mapstructure:"uri"`
		Name          string `mapstructure:"name"`
		Description   string `mapstructure:"description"`
		Domain        string `mapstructure:"domain"`
		PrefersBorder bool   `mapstructure:"prefersBorder"`
	} `mapstructure:"widget"`
	CSP struct {
		ConnectDomains  []string `mapstructure:"connectDomains"`
		ResourceDomains []string `mapstructure:"resourceDomains"`
	} `mapstructure:"csp"`
	Transport struct {
		Type     string `mapstructure:"type"`
		HTTPAddr string `mapstructure:"httpAddr"`
		HTTPPath string `mapstructure:"httpPath"`
	} `mapstructure:"transport"`
	Observability struct {
		ListenAddress string `mapstructure:"listenAddress"`
		Enabled       bool   `mapstructure:"enabled"`
	} `mapstructure:"observability"`
}

func newConfigViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("bundlePath", domain.DefaultBundlePath)
	v.SetDefault("storePath", domain.DefaultStorePath)
	v.SetDefault("widget.uri", domain.WidgetURI)
	v.SetDefault("widget.name", domain.WidgetName)
	v.SetDefault("widget.description", domain.WidgetDescription)
	v.SetDefault("widget.domain", domain.DefaultWidgetDomain)
	v.SetDefault("widget.prefersBorder", true)
	v.SetDefault("csp.connectDomains", []string{})
	v.SetDefault("csp.resourceDomains", []string{})
	v.SetDefault("transport.type", TransportStdio)
	v.SetDefault("transport.httpAddr", domain.DefaultHTTPListenAddress)
	v.SetDefault("transport.httpPath", domain.DefaultHTTPPath)
	v.SetDefault("observability.listenAddress", domain.DefaultObservabilityListenAddress)
	v.SetDefault("observability.enabled", false)
	return v
}

// Load reads the YAML config at path. An empty path yields defaults.
func Load(path string, logger *zap.Logger) (Config, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	v := newConfigViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		logger.Info("config loaded", zap.String("path", path))
	}

	var raw rawConfig
	if err := v.Unmarshal(&raw); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	cfg := Config{
		BundlePath: raw.BundlePath,
		StorePath:  raw.StorePath,
		Widget: WidgetConfig{
			URI:           raw.Widget.URI,
			Name:          raw.Widget.Name,
			Description:   raw.Widget.Description,
			Domain:        raw.Widget.Domain,
			PrefersBorder: raw.Widget.PrefersBorder,
		},
		CSP: CSPConfig{
			ConnectDomains:  raw.CSP.ConnectDomains,
			ResourceDomains: raw.CSP.ResourceDomains,
		},
		Transport: TransportConfig{
			Type:     raw.Transport.Type,
			HTTPAddr: raw.Transport.HTTPAddr,
			HTTPPath: raw.Transport.HTTPPath,
		},
		Observability: ObservabilityConfig{
			ListenAddress: raw.Observability.ListenAddress,
			Enabled:       raw.Observability.Enabled,
		},
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.BundlePath == "" {
		return fmt.Errorf("bundlePath is required")
	}
	if c.Widget.URI == "" {
		return fmt.Errorf("widget.uri is required")
	}
	switch c.Transport.Type {
	case TransportStdio, TransportStreamableHTTP:
	default:
		return fmt.Errorf("unknown transport type %q", c.Transport.Type)
	}
	if c.Transport.Type == TransportStreamableHTTP && c.Transport.HTTPAddr == "" {
		return fmt.Errorf("transport.httpAddr is required for streamable-http")
	}
	return nil
}
