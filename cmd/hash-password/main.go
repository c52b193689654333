// Command hash-password prints bcrypt hashes for the given passwords, in the
// format stored in the users table. It is used to prepare accounts by hand.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/phrazzld/taskie-api/internal/service/auth"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost factor")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: hash-password [-cost N] password...")
		os.Exit(2)
	}
	if err := run(os.Stdout, *cost, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run hashes each password and checks the hash verifies before printing it.
func run(out io.Writer, cost int, passwords []string) error {
	hasher := auth.NewBcryptHasher(cost)
	for _, password := range passwords {
		hash, err := hasher.Hash(password)
		if err != nil {
			return fmt.Errorf("error generating hash: %w", err)
		}
		if err := hasher.Compare(hash, password); err != nil {
			return fmt.Errorf("generated hash does not verify: %w", err)
		}
		fmt.Fprintf(out, "Password: %s\nHash: %s\n\n", password, hash)
	}
	return nil
}
