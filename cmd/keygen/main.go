package main

import (
	"fmt"
	"os"

	"github.com/arnavshah/autohours-api-go/pkg/auth"
	"github.com/arnavshah/autohours-api-go/pkg/config"
)

func main() {
	config.LoadEnv()

	if len(os.Args) < 2 {
		fmt.Println("Usage: keygen <clientID>")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.APIMasterSecret == "" {
		fmt.Println("Error: API_MASTER_SECRET not found in environment or .env")
		os.Exit(1)
	}

	clientID := os.Args[1]
	fmt.Printf("Generated Key for %s:\n%s\n", clientID, auth.New(cfg).GenerateAPIKey(clientID))
}
