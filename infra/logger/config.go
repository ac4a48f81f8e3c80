package logger

import "github.com/rs/zerolog"

var prettyOutput bool

// Configure applies the global log level and output format. It affects
// loggers created afterwards, so call it before wiring the service.
func Configure(level string, pretty bool) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(lvl)
	prettyOutput = pretty
	return nil
}
