package main

import (
	"fmt"
	"os"

	"github.com/shestoi/shopmq/internal/product/app"
)

func main() {
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "product-service: %v\n", err)
		os.Exit(1)
	}
}
