package devserver

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the dev server's YAML configuration.
type Config struct {
	Listen    string `yaml:"Listen"`
	UploadDir string `yaml:"UploadDir"`
	// PublicBaseURL is prepended to stored file names in attachment URLs.
	// Defaults to a path under the server itself.
	PublicBaseURL string `yaml:"PublicBaseURL"`
}

// LoadConfig reads the YAML file at path. Missing fields keep their zero
// value; the server applies defaults on top.
func LoadConfig(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var conf Config
	if err := yaml.Unmarshal(buf, &conf); err != nil {
		return nil, err
	}

	return &conf, nil
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.UploadDir == "" {
		c.UploadDir = "uploads"
	}
	if c.PublicBaseURL == "" {
		c.PublicBaseURL = "/uploads"
	}
}
