package main

import (
	"os"

	"github.com/joho/godotenv"

	"vendzone/internal/cli"
)

func main() {
	_ = godotenv.Load(".env.local")
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
