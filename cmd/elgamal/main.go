package main

import (
	"fmt"
	"os"

	elgamalcli "github.com/drand/elgamal/internal/elgamal-cli"
)

func main() {
	app := elgamalcli.CLI()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}
