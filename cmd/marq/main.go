// Command marq evaluates marq documents and answers tooling queries about
// them.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/marq/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()

	code := cli.GetExitCode(err)

	// Commands report their own failures; usage and flag errors are not.
	var exitErr *cli.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
		code = cli.ExitCommandError
	}
	os.Exit(code)
}
