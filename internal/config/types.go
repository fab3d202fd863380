package config

// Params holds everything one deployment run needs. It is collected from
// prompts, flags, environment, and the optional defaults file, then passed
// explicitly through the pipeline.
type Params struct {
	RepoURL string `mapstructure:"repo_url" yaml:"repo_url"`
	Token   string `mapstructure:"token" yaml:"token,omitempty"`
	Branch  string `mapstructure:"branch" yaml:"branch"`
	SSHUser string `mapstructure:"ssh_user" yaml:"ssh_user"`
	Host    string `mapstructure:"host" yaml:"host"`
	SSHPort int    `mapstructure:"ssh_port" yaml:"ssh_port,omitempty"`
	KeyPath string `mapstructure:"key_path" yaml:"key_path"`
	AppPort int    `mapstructure:"app_port" yaml:"app_port"`
}

// GlobalConfig represents the global ~/.config/shipit/config.yaml
type GlobalConfig struct {
	Servers     map[string]ServerConfig `yaml:"servers"`
	DefaultUser string                  `yaml:"default_user,omitempty"`
	DefaultPort int                     `yaml:"default_port,omitempty"`
}

// ServerConfig represents a saved deployment target
type ServerConfig struct {
	Host    string `yaml:"host"`
	User    string `yaml:"user"`
	Port    int    `yaml:"port,omitempty"`
	KeyPath string `yaml:"key_path,omitempty"`
}

// DefaultGlobalConfig returns an empty server registry with sane defaults.
func DefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		Servers:     make(map[string]ServerConfig),
		DefaultPort: 22,
	}
}
