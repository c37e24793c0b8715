package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"wagerbot/config"
)

// configureLogging applies LOG_LEVEL and LOG_FORMAT to the global logger
func configureLogging(cfg *config.Config) error {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	log.SetLevel(level)
	log.SetOutput(os.Stdout)

	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}
