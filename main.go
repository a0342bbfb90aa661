package main

import (
	"fmt"
	"os"

	api "github.com/hmartins/customer-directory/cmd/api"
)

func main() {
	if err := api.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}
