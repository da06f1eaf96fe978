package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Prints a random secret suitable for JWT_SECRET.
func main() {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic(err)
	}

	fmt.Printf("JWT_SECRET=%s\n", hex.EncodeToString(secret))
}
