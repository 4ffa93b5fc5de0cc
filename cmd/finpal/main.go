// Command finpal runs the finPal API server and its maintenance tasks.
package main

import (
	"os"

	"github.com/eshaffer321/finpal-backend/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
