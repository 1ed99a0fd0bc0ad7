package tracelog

import (
	"runtime"
	"strconv"
	"strings"
	"time"
)

// goroutineID extracts the calling goroutine's id from its stack trace
// header ("goroutine 123 [running]: ..."), for tracing only — never used
// for synchronization.
func goroutineID() string {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	fields := strings.Fields(string(buf))
	if len(fields) < 2 {
		return "?"
	}
	return fields[1]
}

// CallRecord is one git-adapter invocation trace: a
// timestamp in microseconds, the calling goroutine id, a context tag, the
// command string, its duration, and whether it succeeded.
type CallRecord struct {
	Micros  int64
	Goro    string
	Context string
	Command string
	Dur     time.Duration
	OK      bool
}

// LogCall writes one CallRecord through Printf, in the same debug-log
// format (timestamp, flags already carried by the std logger).
func LogCall(contextTag, command string, dur time.Duration, ok bool) {
	rec := CallRecord{
		Micros:  time.Now().UnixMicro(),
		Goro:    goroutineID(),
		Context: contextTag,
		Command: command,
		Dur:     dur,
		OK:      ok,
	}
	status := "ok"
	if !rec.OK {
		status = "err"
	}
	Printf("call micros=%d goro=%s ctx=%s cmd=%q dur=%s result=%s",
		rec.Micros, rec.Goro, rec.Context, rec.Command, rec.Dur, status)
}

// Timed runs fn, logging a CallRecord for it, and returns fn's error.
func Timed(contextTag, command string, fn func() error) error {
	start := time.Now()
	err := fn()
	LogCall(contextTag, command, time.Since(start), err == nil)
	return err
}

// MicrosString formats micros as a decimal string (helper for JSON/trace
// consumers that want the raw timestamp without re-deriving it).
func MicrosString(micros int64) string {
	return strconv.FormatInt(micros, 10)
}
