package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init initializes the global logger with dual sinks: os.Stderr and a rotating file.
// logDir may be empty, in which case only the console sink is installed.
func Init(verbose bool, logDir string) {
	// 1. Determine log level
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	// 2. Setup Stderr Writer (Console)
	isTerminal := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !isTerminal,
	}

	var sink io.Writer = consoleWriter

	// 3. Setup File Writer (Rotating). A broken log dir must not take the
	// client down; fall back to the console sink alone.
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0755); err == nil {
			fileWriter := &lumberjack.Logger{
				Filename:   filepath.Join(logDir, "insightwatch.log"),
				MaxSize:    16, // megabytes
				MaxBackups: 8,
				MaxAge:     90, // days
				Compress:   true,
			}
			sink = zerolog.MultiLevelWriter(consoleWriter, fileWriter)
		}
	}

	// 4. Set Global Logger
	log.Logger = zerolog.New(sink).
		With().
		Timestamp().
		Logger()
}
