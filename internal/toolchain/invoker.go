// Package toolchain drives one blocking invocation of the external
// compiler driver under the sysroot's lock discipline.
package toolchain

import (
	"fmt"
	"os"
	"os/exec"

	"xbuild/internal/flags"
	"xbuild/internal/sysroot"
)

// DriverEnv overrides which driver binary is invoked.
const DriverEnv = "CARGO"

// DefaultDriver is the conventional driver binary name.
const DefaultDriver = "cargo"

// Commander interface for testing
type Commander interface {
	Run() error
}

// Invoker assembles the invocation environment and runs the driver.
type Invoker struct {
	execCommand func(name string, args ...string) Commander
}

// NewInvoker creates an invoker that spawns real processes.
func NewInvoker() *Invoker {
	return &Invoker{
		execCommand: func(name string, args ...string) Commander {
			return exec.Command(name, args...)
		},
	}
}

// Run invokes the driver with commandName and args, holding shared
// locks on both the host triple's and the target triple's sysroot
// directories for the full process lifetime: the driver reads
// precompiled artifacts from either, and must never observe a
// concurrent rebuild tearing them down. The flags are rendered with
// the sysroot path injected and handed over via RUSTFLAGS.
//
// The driver's exit status is returned as data. A nonzero status is
// the driver reporting a failed build, not an invoker failure; the
// caller decides what to do with it.
func (iv *Invoker) Run(args []string, targetTriple string, rf *flags.Rustflags, home *sysroot.Home, hostTriple, commandName string, verbose bool) (int, error) {
	env, err := rf.ForInvocation(home.Path())
	if err != nil {
		return 0, err
	}

	driver := os.Getenv(DriverEnv)
	if driver == "" {
		driver = DefaultDriver
	}

	hostLock, err := home.LockRead(hostTriple)
	if err != nil {
		return 0, err
	}
	defer hostLock.Release()

	targetLock, err := home.LockRead(targetTriple)
	if err != nil {
		return 0, err
	}
	defer targetLock.Release()

	cmdArgs := append([]string{commandName}, args...)

	c := iv.execCommand(driver, cmdArgs...)
	if cmd, ok := c.(*exec.Cmd); ok {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		cmd.Env = append(os.Environ(), "RUSTFLAGS="+env)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "+ RUSTFLAGS=%q\n", env)
	}

	err = c.Run()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), nil
		}

		return 0, fmt.Errorf("failed to run %s: %w", driver, err)
	}

	return 0, nil
}
