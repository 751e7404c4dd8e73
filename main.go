package main

import (
	"log"

	"github.com/YagooSRV/Azure-Partiel-2a3/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatalf("items-api: %v", err)
	}
}
