package config

import (
	"flag"
	"os"
	"time"

	"github.com/fmchong/intramail/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the action API (default from Config)
//	-m string   mirror database path (default from Config)
//	-r int      refresh interval in seconds (default from Config)
//	-i int      probe interval in seconds (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows
// about, using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-m", "-r", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "base URL of the action API")
	fs.StringVar(&cfg.MirrorPath, "m", cfg.MirrorPath, "path of the local mirror database")
	refreshInterval := fs.Int("r", int(cfg.RefreshInterval.Seconds()), "refresh interval (in seconds)")
	probeInterval := fs.Int("i", int(cfg.ProbeInterval.Seconds()), "probe interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RefreshInterval = time.Duration(*refreshInterval) * time.Second
	cfg.ProbeInterval = time.Duration(*probeInterval) * time.Second
}
