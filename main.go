// Command labmigrate moves a Benchling export into Labii.
package main

import (
	"github.com/gaurav-prasanna/labmigrate/cmd"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cmd.Execute()
}
