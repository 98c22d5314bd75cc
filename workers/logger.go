package workers

import (
	"log"

	"listing_studio/models"
)

// LogFunc receives worker events worth keeping beyond the process log.
type LogFunc func(level models.LogLevel, source, message string)

// NoOpLogger does nothing (default)
var NoOpLogger LogFunc = func(level models.LogLevel, source, message string) {}

// StdLogger writes events to the standard logger.
var StdLogger LogFunc = func(level models.LogLevel, source, message string) {
	log.Printf("%s [%s] %s", source, level, message)
}
