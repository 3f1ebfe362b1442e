package main

import (
	"fmt"
	"os"

	cli "github.com/lacviet-ai/quyche/cmd/quyche"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
