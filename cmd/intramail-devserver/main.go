package main

import (
	"flag"
	"log"
	"os"

	"github.com/fmchong/intramail/internal/devserver"
)

func main() {
	var confPath string
	flag.StringVar(&confPath, "config", "devserver.yaml", "Path to config file")
	flag.Parse()

	conf := &devserver.Config{}
	if _, err := os.Stat(confPath); err == nil {
		loaded, err := devserver.LoadConfig(confPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		conf = loaded
	}

	s, err := devserver.New(conf)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	if err := s.Start(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
