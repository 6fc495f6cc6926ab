package shell

import (
	"fmt"
	"strings"

	"github.com/josephlewis42/minish/core/kernel"
)

// ExitRequest is returned by Execute when the shell should terminate.
type ExitRequest struct {
	Status int
}

func (e *ExitRequest) Error() string {
	return fmt.Sprintf("exit requested with status %d", e.Status)
}

// FatalError is a failure the shell can't continue after, such as running
// out of memory.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal: %v", e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Execute runs a parsed line. Lines without a command do nothing. Builtins
// run in the shell, anything else is started as a child process and waited
// on. Failures are *kernel.Error values the caller can report and move past,
// except *ExitRequest and *FatalError.
func (c *Context) Execute(line *Line) error {
	if !line.HasCommand {
		return nil
	}

	if builtin, ok := AllBuiltins[line.Command]; ok {
		return builtin.Main(c, line.Argv())
	}

	return c.spawn(line)
}

func (c *Context) spawn(line *Line) error {
	name := line.Command
	argv := line.Argv()
	env := c.Env.With(line.Env...)

	var (
		proc kernel.Process
		err  error
	)
	if strings.Contains(name, "/") {
		c.logf("starting %q", name)
		proc, err = c.Kernel.CreateProcess(nil, name, argv, env)
	} else {
		proc, err = c.search(name, argv, env)
	}
	if err != nil {
		return kernel.Translate(name, err)
	}

	status, err := proc.Join()
	if err != nil {
		return kernel.Translate(name, err)
	}

	c.lastStatus = status
	c.logf("%s exited with status %d", name, status)
	return nil
}

// search tries each PATH directory in order and stops at the first one the
// kernel can start name from. If none can, the last directory's failure is
// returned.
func (c *Context) search(name string, argv, env []string) (kernel.Process, error) {
	dirs := c.PathCache()
	if len(dirs) == 0 {
		return nil, kernel.NewError(kernel.ErrNotFound, "", fmt.Sprintf("Command %s not found", name))
	}

	var lastErr error
	for _, dir := range dirs {
		proc, err := c.Kernel.CreateProcess(dir, name, argv, env)
		if err == nil {
			c.logf("starting %q from %s", name, dir.Name())
			return proc, nil
		}
		c.logf("%s: can't start from %s: %v", name, dir.Name(), err)
		lastErr = err
	}

	return nil, lastErr
}
