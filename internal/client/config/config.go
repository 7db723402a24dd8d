package config

import (
	"os"
	"path/filepath"
	"time"
)

// ObjectStorage configures the optional direct S3 leg for attachments.
// Empty Bucket means the action API handles uploads.
type ObjectStorage struct {
	Endpoint      string
	Region        string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
}

// Config holds runtime settings for the intramail client.
//
// Fields:
//   - ServerEndpointAddr: base URL of the action API endpoint.
//   - MirrorPath: filesystem location of the local mirror database.
//   - RefreshInterval: period of the background folder refresh cycle.
//   - ProbeInterval: how often the client probes server reachability.
//
// Units: intervals are time.Duration values (e.g., 10*time.Second).
type Config struct {
	ServerEndpointAddr string
	MirrorPath         string
	RefreshInterval    time.Duration
	ProbeInterval      time.Duration
	ObjectStorage      ObjectStorage
}

// LoadDefaults populates c with sensible defaults. The mirror lands under
// the user's home directory so it survives reinstalls of the binary.
func (c *Config) LoadDefaults() {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	c.ServerEndpointAddr = "http://127.0.0.1:8080/api.php"
	c.MirrorPath = filepath.Join(home, ".intramail", "mirror.db")
	c.RefreshInterval = 10 * time.Second
	c.ProbeInterval = 3 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
