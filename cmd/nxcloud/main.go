package main

import (
	"context"
	"fmt"
	"os"

	"github.com/budde25/nxcloud/internal/cli"
	"github.com/budde25/nxcloud/internal/config"
	"github.com/budde25/nxcloud/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	app := cli.NewApp(cfg)
	root := cli.NewRootCommand(app)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
