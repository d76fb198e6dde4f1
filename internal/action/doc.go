// Package action adapts the login flow to the CI host it runs on.
//
// Host is the narrow capability set the flow needs: read inputs, set outputs,
// mark the run failed and write to the host's log channel. GitHub implements it
// with GitHub Actions workflow commands; tests use actiontest.Recorder.
//
// NewHandler turns a Host into an slog.Handler so the rest of the code can log
// through log/slog and still land in the host's debug/info/warning/error streams.
package action
