package vault

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// PublicKeyLen — длина публичного ключа леджера в байтах.
const PublicKeyLen = 32

// PublicKey — 32-байтовый идентификатор аккаунта (owner, recipient, delegate,
// адрес самого vault). В текстовом виде всегда base58, как в леджере.
type PublicKey [PublicKeyLen]byte

// ParsePublicKey разбирает base58-строку в PublicKey.
func ParsePublicKey(s string) (PublicKey, error) {
	var pk PublicKey
	raw, err := base58.Decode(s)
	if err != nil {
		return pk, fmt.Errorf("parse pubkey: %w", err)
	}
	if len(raw) != PublicKeyLen {
		return pk, fmt.Errorf("parse pubkey: expected %d bytes, got %d", PublicKeyLen, len(raw))
	}
	copy(pk[:], raw)
	return pk, nil
}

// Base58 возвращает каноническое строковое представление ключа.
func (pk PublicKey) Base58() string {
	return base58.Encode(pk[:])
}

// IsZero сообщает, является ли ключ нулевым (незаполненным).
func (pk PublicKey) IsZero() bool {
	return pk == PublicKey{}
}

func (pk PublicKey) String() string { return pk.Base58() }
