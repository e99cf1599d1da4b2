package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/gorilla/securecookie"
)

const SecretKeyBytesLen = 32

// Print random secret suitable for SECRET_KEY
func main() {
	b := securecookie.GenerateRandomKey(SecretKeyBytesLen)
	if b == nil {
		fmt.Fprintln(os.Stderr, "error while generating secret key")
		os.Exit(1)
	}

	fmt.Println(hex.EncodeToString(b))
}
