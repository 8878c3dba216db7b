package main

import (
	todoist "github.com/nicolagi/todoist-rest"
	"github.com/nicolagi/todoist-rest/internal/config"
	log "github.com/sirupsen/logrus"
)

var (
	client   *todoist.Client
	stateDir string
)

func main() {
	cfg := mustLoadConfig()
	stateDir = cfg.StateDir
	client = mustCreateClient(cfg)

	go watchState(stateDir)

	// Create initial window listing all projects.
	newAllProjectsWindow()

	// The program will be terminated when the last acme window owned by this process is deleted.
	select {}
}

func mustLoadConfig() *config.Config {
	cfg, err := config.Load("")
	if err != nil {
		log.WithField("cause", err).Fatal("Could not load configuration")
	}
	return cfg
}

func mustCreateClient(cfg *config.Config) *todoist.Client {
	client, err := cfg.NewClient()
	if err != nil {
		log.WithField("cause", err).Fatal("Could not create client")
	}
	if err := client.Load(cfg.StateDir); err != nil {
		log.WithField("cause", err).Warning("Could not load local data, will start empty")
	}
	return client
}
