package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/playpool/billiards/internal/admin"
)

// Prints the OPERATOR_KEY_HASH value for the key in OPERATOR_KEY.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	key := os.Getenv("OPERATOR_KEY")
	if key == "" && len(os.Args) > 1 {
		key = os.Args[1]
	}
	if key == "" {
		log.Fatal("Set OPERATOR_KEY or pass the key as the first argument")
	}

	hash, err := admin.HashOperatorKey(key)
	if err != nil {
		log.Fatalf("Failed to hash operator key: %v", err)
	}

	fmt.Printf("OPERATOR_KEY_HASH=%s\n", hash)
}
