package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const DefaultProjectName = "GodShitEater v4.0"

type Config struct {
	Project ProjectConfig `yaml:"project"`
	HF      HFConfig      `yaml:"hf"`
	Web     WebConfig     `yaml:"web"`
	NATS    NATSConfig    `yaml:"nats"`
	Monitor MonitorConfig `yaml:"monitor"`
	Log     LogConfig     `yaml:"log"`
}

type ProjectConfig struct {
	Name       Value `yaml:"name"`
	GitHubRepo Value `yaml:"github_repo"`
}

type HFConfig struct {
	Username  Value  `yaml:"username"`
	SpaceName Value  `yaml:"space_name"`
	Token     Value  `yaml:"token"`
	Endpoint  string `yaml:"endpoint"`
}

type WebConfig struct {
	Port        int    `yaml:"port"`
	FrontendDir string `yaml:"frontend_dir"`
}

type NATSConfig struct {
	Enabled bool `yaml:"enabled"`
	// Port -1 picks a random free port.
	Port int `yaml:"port"`
}

type MonitorConfig struct {
	Schedule string `yaml:"schedule"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func defaults() Config {
	return Config{
		Project: ProjectConfig{
			Name: Set(DefaultProjectName),
		},
		HF: HFConfig{
			Endpoint: "https://huggingface.co",
		},
		Web: WebConfig{
			Port: 7860,
		},
		NATS: NATSConfig{
			Enabled: true,
			Port:    -1,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func Load() (*Config, error) {
	cfg := defaults()

	path := os.Getenv("GSE_CONFIG")
	if path == "" {
		path = "config/gse.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)

	return &cfg, nil
}

// Setting resolves one of the named project settings. Unknown names are
// reported as unset.
func (c *Config) Setting(name string) (string, bool) {
	switch name {
	case "project_name":
		return c.Project.Name.Get()
	case "hf_username":
		return c.HF.Username.Get()
	case "hf_space_name":
		return c.HF.SpaceName.Get()
	case "github_repo":
		return c.Project.GitHubRepo.Get()
	}
	return "", false
}

// ProjectName returns the configured project name, falling back to the
// default when the setting was explicitly cleared in YAML.
func (c *Config) ProjectName() string {
	if v, ok := c.Project.Name.Get(); ok {
		return v
	}
	return DefaultProjectName
}

func applyEnv(cfg *Config) {
	// Settings keep empty values: an exported empty variable is still set.
	lookup(&cfg.Project.Name, "PROJECT_NAME")
	lookup(&cfg.Project.GitHubRepo, "GITHUB_REPO")
	lookup(&cfg.HF.Username, "HF_USERNAME")
	lookup(&cfg.HF.SpaceName, "HF_SPACE_NAME")
	lookup(&cfg.HF.Token, "HF_TOKEN")

	if v := os.Getenv("HF_ENDPOINT"); v != "" {
		cfg.HF.Endpoint = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Web.Port = port
		}
	}
	if v := os.Getenv("GSE_WEB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Web.Port = port
		}
	}
	if v := os.Getenv("GSE_FRONTEND_DIR"); v != "" {
		cfg.Web.FrontendDir = v
	}
	if v := os.Getenv("GSE_NATS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.NATS.Port = port
		}
	}
	if v := os.Getenv("GSE_NATS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.NATS.Enabled = enabled
		}
	}
	if v := os.Getenv("GSE_MONITOR_SCHEDULE"); v != "" {
		cfg.Monitor.Schedule = v
	}
	if v := os.Getenv("GSE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("GSE_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

func lookup(dst *Value, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = Set(v)
	}
}
