package main

import (
	"os"

	"github.com/lumenboard/lumenboard/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
