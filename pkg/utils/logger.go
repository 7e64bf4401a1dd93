package utils

import "go.uber.org/zap"

// NewLogger returns a development logger (human-readable console encoding,
// debug level) when debug is true, or a production logger (JSON encoding,
// info level) otherwise.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
