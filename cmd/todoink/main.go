package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"todoink/internal/services"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitCode(err))
	}
}

// exitCode separates failures a person must fix (token, focus names) from
// transient ones a scheduler can simply retry.
func exitCode(err error) int {
	if services.NeedsAttention(err) {
		return 2
	}
	return 1
}
