package main

import (
	"github.com/joho/godotenv"
)

func main() {
	// Optional .env for local development (RACKLINE_DATABASE_URL etc).
	_ = godotenv.Load()
	Execute()
}
