package shell

import (
	"errors"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/josephlewis42/minish/core/alloc"
	"github.com/josephlewis42/minish/core/kernel"
)

// Context is everything a shell needs to run lines. Each context owns its
// PATH cache, contexts must not share one.
type Context struct {
	Kernel kernel.Services
	// Env is the inherited environment, children get a copy with the line's
	// assignments applied.
	Env  kernel.Environ
	Heap *alloc.Heap

	Stdout io.Writer
	Stderr io.Writer
	// Log receives debug messages, nil discards them.
	Log *log.Logger

	pathOnce sync.Once
	path     []kernel.DirHandle

	lastStatus int
}

func (c *Context) logf(format string, v ...interface{}) {
	if c.Log != nil {
		c.Log.Printf(format, v...)
	}
}

// LastStatus returns the exit status of the most recently joined child.
func (c *Context) LastStatus() int {
	return c.lastStatus
}

// PathCache returns handles for the directories in PATH, in order. The
// directories are opened on the first call and kept for the life of the
// context; empty entries and ones that fail to open are skipped.
func (c *Context) PathCache() []kernel.DirHandle {
	c.pathOnce.Do(func() {
		c.path = c.openPath(c.Env.Getenv(kernel.EnvPath))
	})
	return c.path
}

func (c *Context) openPath(path string) []kernel.DirHandle {
	var dirs []kernel.DirHandle
	for _, entry := range strings.Split(path, ":") {
		if entry == "" {
			continue
		}

		dir, err := c.Kernel.OpenDir(entry)
		if err != nil {
			c.logf("skipping PATH entry %q: %v", entry, err)
			continue
		}
		dirs = append(dirs, dir)
	}
	return dirs
}

// Close releases the PATH cache.
func (c *Context) Close() error {
	var errs []error
	for _, dir := range c.path {
		if err := dir.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.path = nil
	return errors.Join(errs...)
}
