package process

import (
	"fmt"
	"os"
	"strconv"
	"testing"

	"golang.org/x/sys/unix"
)

// helperEnv turns the test binary into the helpers program when it is
// exec'd by a child, as opposed to re-executed through Init.
const helperEnv = "KYUA_FORK_TEST_HELPERS"

func TestMain(m *testing.M) {
	Init()
	if os.Getenv(helperEnv) != "" {
		helpers(os.Args[1:])
	}
	os.Exit(m.Run())
}

// helpers mimics a small test program: it needs a helper name and exits
// with a failure code otherwise.
func helpers(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Must provide a helper name")
		os.Exit(1)
	}
	switch args[0] {
	case "print-args":
		fmt.Printf("argv[0] = %s\n", os.Args[0])
		for i, arg := range args {
			fmt.Printf("argv[%d] = %s\n", i+1, arg)
		}
		os.Exit(0)
	case "exit":
		code, _ := strconv.Atoi(args[1])
		os.Exit(code)
	default:
		fmt.Fprintf(os.Stderr, "Unknown helper %s\n", args[0])
		os.Exit(1)
	}
}

var (
	// execHelpers execs the test binary as the helpers program.
	execHelpers = Register("test-exec-helpers", func(args []string) {
		bin, err := os.Executable()
		if err != nil {
			panic(err)
		}
		_ = os.Setenv(helperEnv, "1")
		Exec(bin, args)
	})

	// exitWith exits with the code given as its only argument.
	exitWith = Register("test-exit-with", func(args []string) {
		code, _ := strconv.Atoi(args[0])
		os.Exit(code)
	})

	// abortUnraisable aborts with a signal sender that always fails.
	abortUnraisable = Register("test-abort-unraisable", func([]string) {
		raise = func(int, unix.Signal) error { return unix.EPERM }
		abort()
	})

	// echo writes its arguments to stdout and returns.
	echo = Register("test-echo", func(args []string) {
		for _, arg := range args {
			fmt.Println(arg)
		}
	})

	// printEnv writes the value of each named variable, or <unset>.
	printEnv = Register("test-print-env", func(args []string) {
		for _, key := range args {
			value, exists := os.LookupEnv(key)
			if !exists {
				value = "<unset>"
			}
			fmt.Printf("%s=%s\n", key, value)
		}
	})

	// stderrWrite writes its argument to stderr.
	stderrWrite = Register("test-stderr", func(args []string) {
		fmt.Fprintln(os.Stderr, args[0])
	})
)

func exitCode(code int) Invocation {
	return exitWith.With(strconv.Itoa(code))
}
