package process

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/hashicorp/go-set"
	"golang.org/x/sys/unix"
)

// The go runtime cannot survive a bare fork(2), so a child is a fresh copy
// of the current executable told through these variables which body to run.
const (
	envBody   = "KYUA_FORK_BODY"
	envStdout = "KYUA_FORK_STDOUT"
	envStderr = "KYUA_FORK_STDERR"
)

// reserved variables never reach the body, nor anything it execs
var reserved = set.From([]string{envBody, envStdout, envStderr})

// Body is a unit of work run inside a child process. It receives the
// arguments bound by Entrypoint.With. The child exits with code 0 when the
// body returns.
type Body func(args []string)

// Entrypoint is a Body registered under a name that is stable across the
// parent and child images.
type Entrypoint struct {
	name string
}

// Invocation is an Entrypoint bound to its arguments, ready to be forked.
type Invocation struct {
	name string
	args []string
}

var (
	bodiesLock sync.RWMutex
	bodies     = make(map[string]Body)
)

// Register makes body runnable in a child under the given name.
//
// Register must be called during package initialization (e.g. assigning
// a package level variable) so that the child image, which never runs
// main past Init, knows about it too. Registering a name twice panics.
func Register(name string, body Body) Entrypoint {
	bodiesLock.Lock()
	defer bodiesLock.Unlock()

	if name == "" || body == nil {
		panic("process: Register requires a name and a body")
	}
	if _, exists := bodies[name]; exists {
		panic(fmt.Sprintf("process: body %q registered twice", name))
	}
	bodies[name] = body
	return Entrypoint{name: name}
}

// With binds args to the entrypoint.
func (e Entrypoint) With(args ...string) Invocation {
	return Invocation{
		name: e.name,
		args: append([]string(nil), args...),
	}
}

// Name returns the registered name of the entrypoint.
func (e Entrypoint) Name() string {
	return e.name
}

func (i Invocation) String() string {
	return fmt.Sprintf("(%s, %v)", i.name, i.args)
}

var execBody = Register("exec", func(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Failed to execute: no program given")
		abort()
	}
	Exec(args[0], args[1:])
})

// Command returns the invocation that replaces the child with program,
// called with args. This is the usual way of launching a test program.
func Command(program string, args []string) Invocation {
	return execBody.With(append([]string{program}, args...)...)
}

func lookupBody(name string) (Body, bool) {
	bodiesLock.RLock()
	defer bodiesLock.RUnlock()
	body, exists := bodies[name]
	return body, exists
}

// Init turns the current process into the child requested by its parent,
// if any. It must be the first statement of main and of TestMain.
//
// In a child Init does not return. In any other process it returns
// immediately.
func Init() {
	name, isChild := os.LookupEnv(envBody)
	if !isChild {
		return
	}

	stdout := os.Getenv(envStdout)
	stderr := os.Getenv(envStderr)
	for _, key := range reserved.List() {
		_ = os.Unsetenv(key)
	}

	if stdout != "" {
		redirect(stdout, unix.Stdout)
	}
	if stderr != "" {
		redirect(stderr, unix.Stderr)
	}

	body, exists := lookupBody(name)
	if !exists {
		fmt.Fprintf(os.Stderr, "Failed to run unknown body %q\n", name)
		abort()
	}

	body(os.Args[1:])
	os.Exit(0)
}

// redirect points fd at path, creating or truncating the file. It runs in
// the child, so failures terminate the child instead of returning.
func redirect(path string, fd int) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to redirect fd %d to %s: %v\n", fd, path, err)
		abort()
	}
	if err = unix.Dup2(int(f.Fd()), fd); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to redirect fd %d to %s: %v\n", fd, path, err)
		abort()
	}
	_ = f.Close()
}

// childEnv returns the environment of the current process with the
// reserved variables replaced by the given ones.
func childEnv(extra map[string]string) []string {
	current := os.Environ()
	result := make([]string, 0, len(current)+len(extra))
	for _, kv := range current {
		key, _, _ := strings.Cut(kv, "=")
		if reserved.Contains(key) {
			continue
		}
		result = append(result, kv)
	}
	for k, v := range extra {
		result = append(result, k+"="+v)
	}
	return result
}
