package main

import (
	"fmt"
	"os"

	"github.com/shestoi/shopmq/internal/order/app"
)

func main() {
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "order-service: %v\n", err)
		os.Exit(1)
	}
}
