//go:build mage

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/magefile/mage/mg"
)

type execOptions struct {
	args   []string
	env    []string
	stream bool
}

type execOption func(*execOptions)

func args(a ...string) execOption {
	return func(o *execOptions) { o.args = a }
}

func env(kv ...string) execOption {
	return func(o *execOptions) { o.env = append(o.env, kv...) }
}

func stream() execOption {
	return func(o *execOptions) { o.stream = true }
}

// run executes command, echoing its output when streaming or when mage runs
// with -v. Buffered output is only printed on failure.
func run(command string, opts ...execOption) (string, error) {
	o := &execOptions{}
	for _, opt := range opts {
		opt(o)
	}

	fmt.Printf("> %s %s\n", command, strings.Join(o.args, " "))
	cmd := exec.Command(command, o.args...)
	cmd.Env = append(os.Environ(), o.env...)

	echo := mg.Verbose() || o.stream
	var out bytes.Buffer
	if echo {
		cmd.Stdout = io.MultiWriter(&out, os.Stdout)
		cmd.Stderr = io.MultiWriter(&out, os.Stderr)
	} else {
		cmd.Stdout = &out
		cmd.Stderr = &out
	}
	if err := cmd.Run(); err != nil {
		if !echo {
			fmt.Println(out.String())
		}
		return "", fmt.Errorf("%s: %w", command, err)
	}
	return out.String(), nil
}
