package kernel

import (
	"strings"
)

// EnvPath is the variable holding the command search path.
const EnvPath = "PATH"

// Environ is an inherited environment block in "key=value" form, in the
// order it was handed to the process.
type Environ []string

// Var is a single environment variable.
type Var struct {
	Key   string
	Value string
}

// splitVar splits a "key=value" entry. Entries without '=' have an empty
// value.
func splitVar(entry string) Var {
	key, value, _ := strings.Cut(entry, "=")
	return Var{Key: key, Value: value}
}

// Vars returns the block as key/value pairs, in order.
func (e Environ) Vars() []Var {
	out := make([]Var, 0, len(e))
	for _, entry := range e {
		out = append(out, splitVar(entry))
	}
	return out
}

// Lookup retrieves the value of the variable named by key. The first entry
// with a matching key wins.
func (e Environ) Lookup(key string) (string, bool) {
	for _, entry := range e {
		if v := splitVar(entry); v.Key == key {
			return v.Value, true
		}
	}
	return "", false
}

// Getenv is like Lookup but returns an empty string for missing variables.
func (e Environ) Getenv(key string) string {
	val, _ := e.Lookup(key)
	return val
}

// With returns a copy of the block with vars applied. A var replaces every
// inherited entry with the same key; new keys are appended in order.
func (e Environ) With(vars ...Var) Environ {
	overridden := make(map[string]bool, len(vars))
	for _, v := range vars {
		overridden[v.Key] = true
	}

	out := make(Environ, 0, len(e)+len(vars))
	for _, entry := range e {
		if overridden[splitVar(entry).Key] {
			continue
		}
		out = append(out, entry)
	}

	// Later assignments to the same key win.
	last := make(map[string]int, len(vars))
	for i, v := range vars {
		last[v.Key] = i
	}
	for i, v := range vars {
		if last[v.Key] != i {
			continue
		}
		out = append(out, v.Key+"="+v.Value)
	}

	return out
}
