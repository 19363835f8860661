// Command envelope encrypts and signs JSON payloads as a JWE nested in a
// JWS, and verifies and decrypts them again.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
