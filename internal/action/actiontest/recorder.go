// Package actiontest provides an in-memory action.Host for tests.
package actiontest

import (
	"fmt"
	"sync"

	"github.com/meshcloud/meshstack-auth/internal/action"
)

// Entry is one recorded log line.
type Entry struct {
	Level   string
	Message string
}

// Recorder is an action.Host that keeps everything in memory.
type Recorder struct {
	Inputs map[string]string
	Env    map[string]string

	mu      sync.Mutex
	outputs map[string]string
	failed  []string
	logs    []Entry
}

// Compile-time check to ensure Recorder implements action.Host
var _ action.Host = (*Recorder)(nil)

// New creates a Recorder with the given inputs.
func New(inputs map[string]string) *Recorder {
	if inputs == nil {
		inputs = map[string]string{}
	}
	return &Recorder{
		Inputs:  inputs,
		Env:     map[string]string{},
		outputs: map[string]string{},
	}
}

func (r *Recorder) Input(name string) string { return r.Inputs[name] }

func (r *Recorder) Getenv(key string) string { return r.Env[key] }

func (r *Recorder) SetOutput(name, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outputs[name] = value
}

func (r *Recorder) SetFailed(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, msg)
}

func (r *Recorder) Debugf(format string, args ...any)   { r.log("debug", format, args...) }
func (r *Recorder) Infof(format string, args ...any)    { r.log("info", format, args...) }
func (r *Recorder) Warningf(format string, args ...any) { r.log("warning", format, args...) }
func (r *Recorder) Errorf(format string, args ...any)   { r.log("error", format, args...) }

func (r *Recorder) log(level, format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, Entry{Level: level, Message: fmt.Sprintf(format, args...)})
}

// Output returns a published output and whether it was set.
func (r *Recorder) Output(name string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.outputs[name]
	return v, ok
}

// Failures returns the messages passed to SetFailed.
func (r *Recorder) Failures() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.failed...)
}

// Logs returns recorded log lines, optionally filtered by level.
func (r *Recorder) Logs(level string) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Entry
	for _, e := range r.logs {
		if level == "" || e.Level == level {
			out = append(out, e)
		}
	}
	return out
}
