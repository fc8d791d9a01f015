package logging

import (
	"go.uber.org/zap"
)

// New creates a zap logger for the given environment and installs it as the
// global logger so packages can use zap.S().
func New(environment string) *zap.SugaredLogger {
	var logger *zap.Logger
	var err error
	if environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		logger = zap.NewExample()
	}
	zap.ReplaceGlobals(logger)
	return logger.Sugar()
}
