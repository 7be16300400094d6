package main

import (
	"os"

	arbitercmder "github.com/complydesk/arbiter/cmd/arbiter"
)

func main() {
	cmd := arbitercmder.NewArbiterCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
