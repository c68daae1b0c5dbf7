package config

// Config represents the unified configuration structure
type Config struct {
	Server        ServerConfig        `json:"server" yaml:"server"`
	Service       ServiceConfig       `json:"service" yaml:"service"`
	Observability ObservabilityConfig `json:"observability" yaml:"observability"`
	HotReload     HotReloadConfig     `json:"hot_reload" yaml:"hot_reload"`
}

// ServiceConfig identifies this instance to health probes
type ServiceConfig struct {
	Name string `json:"name" yaml:"name"`
}
