package simulation

import (
	"context"
	"log/slog"
)

// LevelTrace sits one step above slog.LevelInfo, mirroring the teacher's
// core.LevelTrace: a level chatty enough that it must be opted into rather
// than filtered out after the fact.
const LevelTrace slog.Level = slog.LevelInfo + 1

// EnableTrace gates every call to trace below, the same way the teacher
// gates PEState/waveform logging behind a package-level bool. The kernel
// packages (atom, pheap, port, hsm) never log at all; this is strictly
// driver-level bookkeeping, off by default so it never touches the hot
// path unless a caller opts in.
var EnableTrace = false

// trace emits msg at LevelTrace through the default slog handler when
// EnableTrace is set, and is a no-op otherwise.
func trace(msg string, args ...any) {
	if !EnableTrace {
		return
	}
	slog.Log(context.Background(), LevelTrace, msg, args...)
}
