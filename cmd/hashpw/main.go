// Command hashpw prints a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
//
//	hashpw <password>
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/iliyamo/performance-signup/internal/config"
	"github.com/iliyamo/performance-signup/internal/utils"
)

func main() {
	if len(os.Args) != 2 || os.Args[1] == "" {
		fmt.Fprintln(os.Stderr, "usage: hashpw <password>")
		os.Exit(2)
	}
	_ = godotenv.Load()

	cost := 12
	if cfg, err := config.Load(); err == nil {
		cost = cfg.BcryptCost
	}
	hash, err := utils.HashPassword(os.Args[1], cost)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash:", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
