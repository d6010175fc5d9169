// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// Setup installs the prefixed text formatter and the requested level.
// An unknown level falls back to info.
func Setup(level string, colors bool) {
	SetupOutput(os.Stdout, level, colors)
}

// SetupOutput is Setup with an explicit destination.
func SetupOutput(w io.Writer, level string, colors bool) {
	formatter := &prefixed.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
		ForceFormatting: true,
		ForceColors:     colors,
		DisableColors:   !colors,
	}
	log.SetFormatter(formatter)
	log.SetOutput(w)

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

// For returns an entry tagged with a component prefix.
func For(prefix string) *log.Entry {
	return log.WithField("prefix", prefix)
}
