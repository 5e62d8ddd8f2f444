// Package wallet loads a local ed25519 key file for the claim flow.
// The file format matches common ledger wallets: a JSON array of 64 bytes,
// seed first, public key second.
package wallet

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"os"

	"KipVault/internal/custody"
)

// Load reads a key file and returns a signer over it.
func Load(path string) (*custody.WalletSigner, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wallet key file: %w", err)
	}
	// JSON-массив чисел, не base64-строка — поэтому не напрямую в []byte.
	var nums []int
	if err := json.Unmarshal(raw, &nums); err != nil {
		return nil, fmt.Errorf("parse wallet key file: %w", err)
	}
	keyBytes := make([]byte, len(nums))
	for i, n := range nums {
		if n < 0 || n > 255 {
			return nil, fmt.Errorf("wallet key file: byte out of range at index %d", i)
		}
		keyBytes[i] = byte(n)
	}
	switch len(keyBytes) {
	case ed25519.PrivateKeySize:
		return custody.NewWalletSigner(ed25519.PrivateKey(keyBytes))
	case ed25519.SeedSize:
		return custody.WalletSignerFromSeed(keyBytes)
	default:
		return nil, fmt.Errorf("wallet key file: unexpected key length %d", len(keyBytes))
	}
}
