package custody

import (
	"crypto/ed25519"
	"errors"

	"KipVault/internal/vault"
)

// WalletSigner — локальный ed25519-кошелёк, реализует Signer.
// В приложении роль Signer играет подключённый браузерный кошелёк;
// локальная реализация нужна CLI (claim по файлу ключа) и тестам.
type WalletSigner struct {
	priv ed25519.PrivateKey
}

// NewWalletSigner оборачивает готовый приватный ключ.
func NewWalletSigner(priv ed25519.PrivateKey) (*WalletSigner, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, errors.New("custody: invalid ed25519 private key size")
	}
	return &WalletSigner{priv: priv}, nil
}

// WalletSignerFromSeed восстанавливает кошелёк из 32-байтового seed.
func WalletSignerFromSeed(seed []byte) (*WalletSigner, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, errors.New("custody: invalid ed25519 seed size")
	}
	return &WalletSigner{priv: ed25519.NewKeyFromSeed(seed)}, nil
}

func (w *WalletSigner) PublicKey() vault.PublicKey {
	var pk vault.PublicKey
	copy(pk[:], w.priv.Public().(ed25519.PublicKey))
	return pk
}

// Sign подписывает сообщение. Подпись ed25519 детерминирована:
// тот же ключ и то же сообщение всегда дают ту же подпись —
// на этом держится воспроизводимость wallet-KEK.
func (w *WalletSigner) Sign(message []byte) ([]byte, error) {
	return ed25519.Sign(w.priv, message), nil
}
