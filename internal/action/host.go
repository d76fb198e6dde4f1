package action

import (
	"github.com/sethvargo/go-githubactions"
)

// Host is the injected view of the CI platform.
type Host interface {
	// Input returns the named step input, or "" if unset.
	Input(name string) string

	// Getenv reads a platform-provided environment variable.
	Getenv(key string) string

	// SetOutput publishes a step output for downstream steps.
	SetOutput(name, value string)

	// SetFailed marks the run failed. It does not terminate the process.
	SetFailed(msg string)

	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warningf(format string, args ...any)
	Errorf(format string, args ...any)
}

// GitHub is a Host backed by GitHub Actions workflow commands.
type GitHub struct {
	action *githubactions.Action
}

// Compile-time check to ensure GitHub implements Host
var _ Host = (*GitHub)(nil)

// NewGitHub creates a GitHub host. Options are passed to githubactions.New,
// which reads from os.Getenv and writes to os.Stdout unless overridden.
func NewGitHub(opts ...githubactions.Option) *GitHub {
	return &GitHub{
		action: githubactions.New(opts...),
	}
}

// Input reads INPUT_<NAME>, trimmed.
func (g *GitHub) Input(name string) string {
	return g.action.GetInput(name)
}

func (g *GitHub) Getenv(key string) string {
	return g.action.Getenv(key)
}

// SetOutput appends to the GITHUB_OUTPUT file.
func (g *GitHub) SetOutput(name, value string) {
	g.action.SetOutput(name, value)
}

// SetFailed emits an error annotation; the exit code is left to the caller.
func (g *GitHub) SetFailed(msg string) {
	g.action.Errorf("%s", msg)
}

func (g *GitHub) Debugf(format string, args ...any) {
	g.action.Debugf(format, args...)
}

func (g *GitHub) Infof(format string, args ...any) {
	g.action.Infof(format, args...)
}

func (g *GitHub) Warningf(format string, args ...any) {
	g.action.Warningf(format, args...)
}

func (g *GitHub) Errorf(format string, args ...any) {
	g.action.Errorf(format, args...)
}
