// Package corelog provides tagged logging with scoped start/end
// messages.
package corelog

import "log"

// Scope logs "[tag] message" at entry and returns a closure that logs
// "[tag] message done" at exit. Callers use it as:
//
//	defer corelog.Scope("ChunkArray", "save")()
func Scope(tag, message string) func() {
	log.Printf("[%s] %s", tag, message)
	return func() {
		log.Printf("[%s] %s done", tag, message)
	}
}

// Infof logs a one-off tagged message with no matching exit line.
func Infof(tag, format string, args ...any) {
	log.Printf("[%s] "+format, append([]any{tag}, args...)...)
}

// Warnf logs a tagged warning for conditions that should be loud
// without failing the calling operation.
func Warnf(tag, format string, args ...any) {
	log.Printf("[%s] WARN "+format, append([]any{tag}, args...)...)
}
