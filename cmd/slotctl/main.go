package main

import (
	"os"

	"salonbook/internal/slotctl"
)

func main() {
	if err := slotctl.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
