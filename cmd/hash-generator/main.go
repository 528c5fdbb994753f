// Command hash-generator prints bcrypt hashes for passwords, one per line.
// Passwords are taken from the arguments, or from stdin when none are given.
// The output is suitable for seeding the users table by hand.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/phrazzld/blog-api/internal/service/auth"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "hash-generator: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("hash-generator", flag.ContinueOnError)
	cost := fs.Int("cost", auth.DefaultBcryptCost, "bcrypt work factor")
	if err := fs.Parse(args); err != nil {
		return err
	}

	hasher := auth.NewBcryptHasher(*cost)
	emit := func(password string) error {
		hash, err := hasher.Hash(password)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, hash)
		return err
	}

	if fs.NArg() > 0 {
		for _, password := range fs.Args() {
			if err := emit(password); err != nil {
				return err
			}
		}
		return nil
	}

	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		if scanner.Text() == "" {
			continue
		}
		if err := emit(scanner.Text()); err != nil {
			return err
		}
	}
	return scanner.Err()
}
