package custody

import (
	"encoding/base64"
	"errors"
	"fmt"

	"KipVault/internal/vault"
)

// Mode — дискриминатор способа защиты ключа содержимого.
type Mode string

const (
	ModePassword Mode = "password"
	ModeWallet   Mode = "wallet"
)

// ErrBadEnvelope — envelope не соответствует своей схеме (это ошибка формата,
// не криптографии — в отличие от ErrDecryptFailed).
var ErrBadEnvelope = errors.New("custody: malformed envelope")

// EncryptedData — зашифрованное содержимое vault: ciphertext + IV, оба base64.
type EncryptedData struct {
	Ciphertext string `json:"ciphertext"`
	IV         string `json:"iv"`
}

// KeyWrapper — парольный envelope ключа содержимого.
type KeyWrapper struct {
	WrappedKey string `json:"wrappedKey"`
	Salt       string `json:"salt"`
	IV         string `json:"iv"`
}

// WalletKey — envelope ключа содержимого под кошельковым KEK.
type WalletKey struct {
	WrappedKey      string `json:"wrappedKey"`
	IV              string `json:"iv"`
	RecipientPubkey string `json:"recipientPubkey"`
	VaultSeed       string `json:"vaultSeed"`
}

// Envelope — полный off-chain пакет vault, хранится рядом с аккаунтом.
// Mode авторитетен: присутствует ровно один из KeyWrapper/WalletKey,
// потребитель не должен трогать отсутствующий. Validate навязывает это
// до любой работы с пакетом.
type Envelope struct {
	EncryptedFile    EncryptedData `json:"encryptedFile"`
	Mode             Mode          `json:"mode"`
	KeyWrapper       *KeyWrapper   `json:"keyWrapper,omitempty"`
	WalletKey        *WalletKey    `json:"walletKey,omitempty"`
	OriginalFileName string        `json:"originalFileName"`
	OriginalFileType string        `json:"originalFileType"`
}

// Validate проверяет эксклюзивность режима: тег и ровно один envelope.
func (e *Envelope) Validate() error {
	switch e.Mode {
	case ModePassword:
		if e.KeyWrapper == nil || e.WalletKey != nil {
			return fmt.Errorf("%w: password mode requires keyWrapper only", ErrBadEnvelope)
		}
	case ModeWallet:
		if e.WalletKey == nil || e.KeyWrapper != nil {
			return fmt.Errorf("%w: wallet mode requires walletKey only", ErrBadEnvelope)
		}
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrBadEnvelope, e.Mode)
	}
	if e.EncryptedFile.Ciphertext == "" || e.EncryptedFile.IV == "" {
		return fmt.Errorf("%w: missing encrypted file", ErrBadEnvelope)
	}
	return nil
}

// SealWithPassword собирает полный envelope парольного режима.
func SealWithPassword(plain []byte, password, fileName, fileType string) (*Envelope, error) {
	contentKey, err := GenerateKey()
	if err != nil {
		return nil, err
	}
	ct, iv, err := Encrypt(plain, contentKey)
	if err != nil {
		return nil, err
	}
	wrapper, err := WrapKeyWithPassword(contentKey, password)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		EncryptedFile: EncryptedData{
			Ciphertext: base64.StdEncoding.EncodeToString(ct),
			IV:         base64.StdEncoding.EncodeToString(iv),
		},
		Mode:             ModePassword,
		KeyWrapper:       wrapper,
		OriginalFileName: fileName,
		OriginalFileType: fileType,
	}, nil
}

// SealWithWallet собирает полный envelope кошелькового режима.
func SealWithWallet(plain []byte, signer Signer, recipient vault.PublicKey, vaultSeed uint64, fileName, fileType string) (*Envelope, error) {
	contentKey, err := GenerateKey()
	if err != nil {
		return nil, err
	}
	ct, iv, err := Encrypt(plain, contentKey)
	if err != nil {
		return nil, err
	}
	walletKey, err := WrapKeyWithWallet(contentKey, signer, recipient, vaultSeed)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		EncryptedFile: EncryptedData{
			Ciphertext: base64.StdEncoding.EncodeToString(ct),
			IV:         base64.StdEncoding.EncodeToString(iv),
		},
		Mode:             ModeWallet,
		WalletKey:        walletKey,
		OriginalFileName: fileName,
		OriginalFileType: fileType,
	}, nil
}

// OpenWithPassword разворачивает ключ паролем и расшифровывает содержимое.
func (e *Envelope) OpenWithPassword(password string) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if e.Mode != ModePassword {
		return nil, fmt.Errorf("%w: not a password envelope", ErrBadEnvelope)
	}
	contentKey, err := UnwrapKeyWithPassword(e.KeyWrapper, password)
	if err != nil {
		return nil, err
	}
	return e.decryptContent(contentKey)
}

// OpenWithWallet разворачивает ключ подписью кошелька и расшифровывает содержимое.
func (e *Envelope) OpenWithWallet(signer Signer) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if e.Mode != ModeWallet {
		return nil, fmt.Errorf("%w: not a wallet envelope", ErrBadEnvelope)
	}
	contentKey, err := UnwrapKeyWithWallet(e.WalletKey, signer)
	if err != nil {
		return nil, err
	}
	return e.decryptContent(contentKey)
}

func (e *Envelope) decryptContent(contentKey []byte) ([]byte, error) {
	ct, err := base64.StdEncoding.DecodeString(e.EncryptedFile.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: bad ciphertext", ErrBadEnvelope)
	}
	iv, err := base64.StdEncoding.DecodeString(e.EncryptedFile.IV)
	if err != nil {
		return nil, fmt.Errorf("%w: bad iv", ErrBadEnvelope)
	}
	return Decrypt(ct, iv, contentKey)
}
