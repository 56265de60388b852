package log

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"
)

// Error logs an error with the caller's file and line.
func Error(context string, err error) {
	log.Printf("[ERROR] in %s: %s: %v", callerInfo(), context, err)
}

// Fatal logs an error and then exits the program.
func Fatal(context string, err error) {
	log.Printf("[FATAL] in %s: %s: %v", callerInfo(), context, err)
	os.Exit(1)
}

// callerInfo returns the file:line of the caller two frames up,
// trimmed to the last two path segments.
func callerInfo() string {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return "unknown"
	}
	parts := strings.Split(file, "/")
	if len(parts) > 2 {
		file = strings.Join(parts[len(parts)-2:], "/")
	}
	return fmt.Sprintf("%s:%d", file, line)
}
