package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/fmchong/intramail/internal/flagx"
	"github.com/fmchong/intramail/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "10s"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config (which uses time.Duration).
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	MirrorPath         string         `json:"mirror_path"`
	RefreshInterval    timex.Duration `json:"refresh_interval"`
	ProbeInterval      timex.Duration `json:"probe_interval"`
	ObjectStorage      struct {
		Endpoint      string `json:"endpoint"`
		Region        string `json:"region"`
		AccessKey     string `json:"access_key"`
		SecretKey     string `json:"secret_key"`
		Bucket        string `json:"bucket"`
		PublicBaseURL string `json:"public_base_url"`
	} `json:"object_storage"`
}

// parseJson overlays Config with values loaded from a JSON file selected via
// the -c/-config flags. Empty JSON fields leave the existing value in place
// so the file only needs the settings it actually changes. Read or unmarshal
// errors panic (caller should recover if desired).
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.MirrorPath != "" {
		cfg.MirrorPath = jc.MirrorPath
	}
	if jc.RefreshInterval.Duration > 0 {
		cfg.RefreshInterval = time.Duration(jc.RefreshInterval.Duration)
	}
	if jc.ProbeInterval.Duration > 0 {
		cfg.ProbeInterval = time.Duration(jc.ProbeInterval.Duration)
	}
	cfg.ObjectStorage = ObjectStorage{
		Endpoint:      jc.ObjectStorage.Endpoint,
		Region:        jc.ObjectStorage.Region,
		AccessKey:     jc.ObjectStorage.AccessKey,
		SecretKey:     jc.ObjectStorage.SecretKey,
		Bucket:        jc.ObjectStorage.Bucket,
		PublicBaseURL: jc.ObjectStorage.PublicBaseURL,
	}
}
