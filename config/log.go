package config

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Loggers of the gateway components, children of "Root".
type Loggers struct {
	Root zerolog.Logger
	Api  zerolog.Logger
	Rpc  zerolog.Logger
}

// Builds the loggers writing to "out" in the configured format and level.
func (self Config) Loggers(out io.Writer) Loggers {
	var writer io.Writer = out
	if self.LogFormat != LogFormatJson {
		writer = zerolog.ConsoleWriter{Out: out, NoColor: true, TimeFormat: time.RFC3339}
	}

	root := zerolog.New(writer).Level(self.LogLevel).With().Timestamp().Logger()
	return Loggers{
		Root: root,
		Api:  root.With().Str("component", "api").Logger(),
		Rpc:  root.With().Str("component", "rpc").Logger(),
	}
}
