package main

import (
	"fmt"
	"os"

	"github.com/bmcnabb/qcodex/internal/service"
)

func main() {
	if err := service.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
