// Command regvm matches, disassembles and precompiles ECMAScript regular
// expressions.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/coregx/regvm/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "regvm: %v\n", err)
	}
	os.Exit(cli.GetExitCode(err))
}
