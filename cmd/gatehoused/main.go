package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/gatehouse-io/gatehouse/pkg/cli"
)

func main() {
	// Load .env file if it exists; real environment wins.
	_ = godotenv.Load()

	if err := cli.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
