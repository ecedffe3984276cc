// Package logger configures the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options select the level and an optional rotating log file. Console output
// always goes to stderr.
type Options struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	Pretty     bool
}

// Init builds the logger, installs it as the global zerolog logger and
// returns it.
func Init(opts Options) zerolog.Logger {
	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var console io.Writer = os.Stderr
	if opts.Pretty {
		console = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}

	out := console
	if opts.File != "" {
		out = zerolog.MultiLevelWriter(console, rotatingFile(opts))
	}

	l := zerolog.New(out).With().Timestamp().Logger()
	log.Logger = l
	return l
}

func rotatingFile(opts Options) io.Writer {
	size := opts.MaxSizeMB
	if size <= 0 {
		size = 50
	}
	backups := opts.MaxBackups
	if backups <= 0 {
		backups = 5
	}
	return &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    size,
		MaxBackups: backups,
		Compress:   true,
	}
}
