package sqlite

import "github.com/tripweave/tripweave/pkg/logger"

// Log field aliases, usable in constructors where a logger parameter
// shadows the logger package name.
var (
	Error  = logger.Error
	String = logger.String
)
