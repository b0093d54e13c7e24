package main

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/freebsd/kyua-fork/pkg/process"
	"github.com/shoenig/test/must"
)

func TestMain(m *testing.M) {
	process.Init()
	os.Exit(m.Run())
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cfg := filepath.Join(t.TempDir(), "kyua-fork.toml")
	must.NoError(t, os.WriteFile(cfg, []byte(`work_dir = "`+t.TempDir()+`"`), 0o644))

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", cfg}, args...))
	err := root.Execute()
	return out.String(), err
}

func shell(t *testing.T) string {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	return sh
}

func TestExecCmd_passed(t *testing.T) {
	out, err := execute(t, "exec", "--", shell(t), "-c", "exit 0")
	must.NoError(t, err)
	must.StrContains(t, out, "passed (exited with code 0)")
}

func TestExecCmd_failed(t *testing.T) {
	out, err := execute(t, "exec", "--", shell(t), "-c", "exit 4")
	must.ErrorIs(t, err, errFailed)
	must.StrContains(t, out, "failed (exited with code 4)")
}

func TestExecCmd_broken(t *testing.T) {
	out, err := execute(t, "exec", "--", "/does/not/exist")
	must.ErrorIs(t, err, errFailed)
	must.StrContains(t, out, "/does/not/exist: broken (received signal 6 (SIGABRT")
}

func TestExecCmd_outputPaths(t *testing.T) {
	dir := t.TempDir()
	stdout := filepath.Join(dir, "program.out")
	stderr := filepath.Join(dir, "program.err")

	_, err := execute(t, "exec", "--stdout", stdout, "--stderr", stderr, "--", shell(t), "-c", "echo out; echo err >&2")
	must.NoError(t, err)

	b, err := os.ReadFile(stdout)
	must.NoError(t, err)
	must.Eq(t, "out\n", string(b))
	b, err = os.ReadFile(stderr)
	must.NoError(t, err)
	must.Eq(t, "err\n", string(b))
}

func TestExecCmd_dirWithStdout(t *testing.T) {
	dir := t.TempDir()
	stdout := filepath.Join(t.TempDir(), "program.out")

	_, err := execute(t, "exec", "--dir", dir, "--stdout", stdout, "--", shell(t), "-c", "echo out; echo err >&2")
	must.NoError(t, err)

	b, err := os.ReadFile(stdout)
	must.NoError(t, err)
	must.Eq(t, "out\n", string(b))
	b, err = os.ReadFile(filepath.Join(dir, "stderr"))
	must.NoError(t, err)
	must.Eq(t, "err\n", string(b))
}

func TestExecCmd_noProgram(t *testing.T) {
	_, err := execute(t, "exec")
	must.ErrorContains(t, err, "must provide a program name")
}

func TestRunCmd(t *testing.T) {
	dir := t.TempDir()
	pass := filepath.Join(dir, "pass.sh")
	fail := filepath.Join(dir, "fail.sh")
	must.NoError(t, os.WriteFile(pass, []byte("#!/bin/sh\nexit 0\n"), 0o755))
	must.NoError(t, os.WriteFile(fail, []byte("#!/bin/sh\nexit 2\n"), 0o755))
	shell(t)

	out, err := execute(t, "run", pass, fail)
	must.ErrorIs(t, err, errFailed)
	must.StrContains(t, out, pass+": passed")
	must.StrContains(t, out, fail+": failed (exited with code 2)")
}

func TestRunCmd_startFailure(t *testing.T) {
	dir := t.TempDir()
	pass := filepath.Join(dir, "pass.sh")
	must.NoError(t, os.WriteFile(pass, []byte("#!/bin/sh\nexit 0\n"), 0o755))
	shell(t)

	// the first program is started before the second one fails to
	_, err := execute(t, "run", pass, "")
	must.ErrorContains(t, err, "program path is required")

	// and it has been reaped on the way out
	_, err = process.WaitAny()
	must.True(t, process.IsNoChildren(err))
}

func TestRunCmd_noPrograms(t *testing.T) {
	_, err := execute(t, "run")
	must.ErrorContains(t, err, "must provide at least one program name")
}
