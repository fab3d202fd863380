package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// LoadDefaults reads the optional shipit.yaml defaults file from the current
// directory and overlays SHIPIT_* environment variables. Missing file is not
// an error: every value can still come from prompts.
func LoadDefaults() (*Params, error) {
	v := viper.New()
	v.SetConfigName("shipit")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("shipit")
	v.AutomaticEnv()

	// Bind explicitly so env vars work without a config file present.
	for _, key := range []string{"repo_url", "token", "branch", "ssh_user", "host", "ssh_port", "key_path", "app_port"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read defaults file: %w", err)
		}
	}

	params := new(Params)
	if err := v.Unmarshal(params); err != nil {
		return nil, fmt.Errorf("unable to unmarshal defaults: %w", err)
	}

	return params, nil
}

// Merge fills empty fields of p from the given defaults. Explicit values
// (flags, prompts) always win over defaults.
func (p *Params) Merge(defaults *Params) {
	if defaults == nil {
		return
	}
	if p.RepoURL == "" {
		p.RepoURL = defaults.RepoURL
	}
	if p.Token == "" {
		p.Token = defaults.Token
	}
	if p.Branch == "" {
		p.Branch = defaults.Branch
	}
	if p.SSHUser == "" {
		p.SSHUser = defaults.SSHUser
	}
	if p.Host == "" {
		p.Host = defaults.Host
	}
	if p.SSHPort == 0 {
		p.SSHPort = defaults.SSHPort
	}
	if p.KeyPath == "" {
		p.KeyPath = defaults.KeyPath
	}
	if p.AppPort == 0 {
		p.AppPort = defaults.AppPort
	}
}
