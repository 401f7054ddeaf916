package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"guildkeeper/config"

	"github.com/kz/discordrus"
	log "github.com/sirupsen/logrus"
)

// Closer releases the files opened by Setup
type Closer func()

// Setup configures the standard logrus logger: text output on stdout, a
// daily file plus error.log under cfg.LogDir, and optionally a Discord
// webhook mirroring severe entries.
func Setup(cfg *config.Config) (Closer, error) {
	return setup(log.StandardLogger(), os.Stdout, cfg)
}

func setup(logger *log.Logger, out io.Writer, cfg *config.Config) (Closer, error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}

	logger.SetOutput(out)
	logger.SetLevel(level)
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	logger.ReplaceHooks(make(log.LevelHooks))

	dated, err := NewDatedFileHook(cfg.LogDir, level)
	if err != nil {
		return nil, err
	}
	errorsOnly, err := NewErrorFileHook(cfg.LogDir)
	if err != nil {
		_ = dated.Close()
		return nil, err
	}
	logger.AddHook(dated)
	logger.AddHook(errorsOnly)

	if cfg.LogWebhookURL != "" {
		webhookLevel, err := log.ParseLevel(cfg.LogWebhookLevel)
		if err != nil {
			webhookLevel = log.ErrorLevel
		}
		logger.AddHook(discordrus.NewHook(cfg.LogWebhookURL, webhookLevel, &discordrus.Opts{
			Username:           "guildkeeper",
			DisableTimestamp:   false,
			TimestampFormat:    "Jan 2 15:04:05.00000",
			EnableCustomColors: true,
			CustomLevelColors: &discordrus.LevelColors{
				Warn:  14327864,
				Error: 13631488,
				Panic: 13631488,
				Fatal: 13631488,
			},
		}))
	}

	return func() {
		_ = dated.Close()
		_ = errorsOnly.Close()
	}, nil
}
