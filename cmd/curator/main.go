package main

import (
	"context"
	"os"

	"curator/internal/cli"
)

func main() {
	err := cli.NewRootCommand().ExecuteContext(context.Background())
	os.Exit(cli.ExitCode(os.Stderr, err))
}
