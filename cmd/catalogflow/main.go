package main

import (
	"fmt"
	"os"

	"github.com/RealZimboGuy/catalogflow/internal/cli"
	"github.com/RealZimboGuy/catalogflow/internal/config"
)

func main() {
	if err := cli.NewRootCommand(config.Load).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
