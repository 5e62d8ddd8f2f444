package custody

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"

	"KipVault/internal/vault"
)

// Параметры PBKDF2 опубликованы и зафиксированы: envelope, завёрнутый
// с этими параметрами, должен разворачиваться всегда.
const (
	pbkdf2Iterations = 100_000
	saltLen          = 16
)

// keyDerivationPrefix — фиксированный префикс сообщения, которое подписывает
// кошелёк при выводе KEK. Привязка к recipient и seed конкретного vault
// исключает переиспользование KEK между vault'ами.
const keyDerivationPrefix = "DEADMAN_SWITCH_V1"

// ErrWrongIdentity — подключённый кошелёк не совпадает с получателем envelope.
var ErrWrongIdentity = errors.New("custody: connected wallet does not match envelope recipient")

// Signer — минимальный контракт кошелька: детерминированная подпись
// произвольного сообщения своим ключом.
type Signer interface {
	PublicKey() vault.PublicKey
	Sign(message []byte) ([]byte, error)
}

// derivePasswordKEK выводит KEK из пароля через PBKDF2-SHA256.
func derivePasswordKEK(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, keyLen, sha256.New)
}

// derivationMessage — воспроизводимое сообщение для вывода wallet-KEK.
func derivationMessage(recipient vault.PublicKey, vaultSeed uint64) []byte {
	return []byte(fmt.Sprintf("%s:%s:%d", keyDerivationPrefix, recipient.Base58(), vaultSeed))
}

// deriveWalletKEK: кошелёк подписывает фиксированное сообщение,
// KEK = SHA-256 подписи. Тот же кошелёк воспроизводит тот же KEK
// без хранения секрета.
func deriveWalletKEK(signer Signer, recipient vault.PublicKey, vaultSeed uint64) ([]byte, error) {
	sig, err := signer.Sign(derivationMessage(recipient, vaultSeed))
	if err != nil {
		return nil, fmt.Errorf("sign derivation message: %w", err)
	}
	kek := sha256.Sum256(sig)
	return kek[:], nil
}

// WrapKeyWithPassword заворачивает ключ содержимого под парольный KEK.
func WrapKeyWithPassword(contentKey []byte, password string) (*KeyWrapper, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	kek := derivePasswordKEK(password, salt)
	wrapped, iv, err := Encrypt(contentKey, kek)
	if err != nil {
		return nil, err
	}
	return &KeyWrapper{
		WrappedKey: base64.StdEncoding.EncodeToString(wrapped),
		Salt:       base64.StdEncoding.EncodeToString(salt),
		IV:         base64.StdEncoding.EncodeToString(iv),
	}, nil
}

// UnwrapKeyWithPassword — точная инверсия WrapKeyWithPassword.
// Неверный пароль валит аутентификацию GCM → ErrDecryptFailed.
func UnwrapKeyWithPassword(w *KeyWrapper, password string) ([]byte, error) {
	salt, err := base64.StdEncoding.DecodeString(w.Salt)
	if err != nil {
		return nil, fmt.Errorf("%w: bad salt", ErrBadEnvelope)
	}
	iv, err := base64.StdEncoding.DecodeString(w.IV)
	if err != nil {
		return nil, fmt.Errorf("%w: bad iv", ErrBadEnvelope)
	}
	wrapped, err := base64.StdEncoding.DecodeString(w.WrappedKey)
	if err != nil {
		return nil, fmt.Errorf("%w: bad wrapped key", ErrBadEnvelope)
	}
	kek := derivePasswordKEK(password, salt)
	return Decrypt(wrapped, iv, kek)
}

// WrapKeyWithWallet заворачивает ключ содержимого под KEK, выведенный из
// подписи кошелька получателя. Envelope несёт идентичность получателя и
// seed vault — контекст, по которому KEK воспроизводится при claim.
func WrapKeyWithWallet(contentKey []byte, signer Signer, recipient vault.PublicKey, vaultSeed uint64) (*WalletKey, error) {
	kek, err := deriveWalletKEK(signer, recipient, vaultSeed)
	if err != nil {
		return nil, err
	}
	wrapped, iv, err := Encrypt(contentKey, kek)
	if err != nil {
		return nil, err
	}
	return &WalletKey{
		WrappedKey:      base64.StdEncoding.EncodeToString(wrapped),
		IV:              base64.StdEncoding.EncodeToString(iv),
		RecipientPubkey: recipient.Base58(),
		VaultSeed:       fmt.Sprintf("%d", vaultSeed),
	}, nil
}

// UnwrapKeyWithWallet разворачивает ключ подписью подключённого кошелька.
// Сначала проверяется сама идентичность (ErrWrongIdentity), затем подпись
// участвует в выводе KEK — чужая подпись валит GCM → ErrDecryptFailed.
func UnwrapKeyWithWallet(wk *WalletKey, signer Signer) ([]byte, error) {
	recipient, err := vault.ParsePublicKey(wk.RecipientPubkey)
	if err != nil {
		return nil, fmt.Errorf("%w: bad recipient pubkey", ErrBadEnvelope)
	}
	if signer.PublicKey() != recipient {
		return nil, ErrWrongIdentity
	}
	var seed uint64
	if _, err := fmt.Sscanf(wk.VaultSeed, "%d", &seed); err != nil {
		return nil, fmt.Errorf("%w: bad vault seed", ErrBadEnvelope)
	}
	kek, err := deriveWalletKEK(signer, recipient, seed)
	if err != nil {
		return nil, err
	}
	iv, err := base64.StdEncoding.DecodeString(wk.IV)
	if err != nil {
		return nil, fmt.Errorf("%w: bad iv", ErrBadEnvelope)
	}
	wrapped, err := base64.StdEncoding.DecodeString(wk.WrappedKey)
	if err != nil {
		return nil, fmt.Errorf("%w: bad wrapped key", ErrBadEnvelope)
	}
	return Decrypt(wrapped, iv, kek)
}
