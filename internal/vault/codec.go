package vault

import (
	"encoding/binary"
	"errors"
	"unicode/utf8"
)

// Ошибки декодирования аккаунта.
var (
	// ErrTruncated — буфер короче, чем требует обязательная часть раскладки.
	ErrTruncated = errors.New("vault: account data truncated")
	// ErrInvalidUTF8 — строковое поле содержит невалидный UTF-8.
	ErrInvalidUTF8 = errors.New("vault: string field is not valid utf-8")
)

// discriminatorLen — служебный префикс аккаунта, содержимое не проверяем.
const discriminatorLen = 8

// Data — расшифрованное состояние on-chain аккаунта vault.
// Это чистая проекция байтов леджера: никогда не мутируется локально,
// на каждое чтение аккаунта строится заново.
type Data struct {
	Owner        PublicKey
	Recipient    PublicKey
	ContentCID   string // указатель на зашифрованный payload в content-addressed хранилище
	EncryptedKey string // обёрнутый симметричный ключ (base64)
	TimeInterval uint64 // окно liveness, секунды
	LastCheckIn  uint64 // unix-время последнего чек-ина
	IsReleased   bool
	VaultSeed    uint64 // seed PDA, он же время создания
	Bump         uint8
	Delegate     *PublicKey // Option<Pubkey>
	Bounty       uint64     // lamports за trigger_release

	// Хвостовые поля: старые аккаунты записаны до их появления,
	// поэтому их нехватка — не ошибка, а нулевые значения.
	Name         string
	LockedAmount uint64     // заблокированные lamports
	TokenMint    *PublicKey // Option<Pubkey>
	LockedTokens uint64
}

// reader — последовательный курсор по байтам аккаунта с проверкой границ.
// Все числа little-endian. Любое чтение за пределами буфера в обязательной
// части раскладки — ErrTruncated, без частичных результатов.
type reader struct {
	data []byte
	off  int
}

func (r *reader) remaining() int { return len(r.data) - r.off }

func (r *reader) skip(n int) error {
	if r.remaining() < n {
		return ErrTruncated
	}
	r.off += n
	return nil
}

func (r *reader) u8() (uint8, error) {
	if r.remaining() < 1 {
		return 0, ErrTruncated
	}
	b := r.data[r.off]
	r.off++
	return b, nil
}

func (r *reader) u32() (uint32, error) {
	if r.remaining() < 4 {
		return 0, ErrTruncated
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

func (r *reader) u64() (uint64, error) {
	if r.remaining() < 8 {
		return 0, ErrTruncated
	}
	v := binary.LittleEndian.Uint64(r.data[r.off:])
	r.off += 8
	return v, nil
}

func (r *reader) pubkey() (PublicKey, error) {
	var pk PublicKey
	if r.remaining() < PublicKeyLen {
		return pk, ErrTruncated
	}
	copy(pk[:], r.data[r.off:r.off+PublicKeyLen])
	r.off += PublicKeyLen
	return pk, nil
}

// str читает строку с 4-байтовым LE префиксом длины.
// Длина, выводящая за конец буфера, — ErrTruncated.
func (r *reader) str() (string, error) {
	n, err := r.u32()
	if err != nil {
		return "", err
	}
	if uint64(r.remaining()) < uint64(n) {
		return "", ErrTruncated
	}
	raw := r.data[r.off : r.off+int(n)]
	r.off += int(n)
	if !utf8.Valid(raw) {
		return "", ErrInvalidUTF8
	}
	return string(raw), nil
}

// optPubkey читает Option<Pubkey>: 1 байт признака (0=None, 1=Some) + 32 байта.
func (r *reader) optPubkey() (*PublicKey, error) {
	tag, err := r.u8()
	if err != nil {
		return nil, err
	}
	if tag == 0 {
		return nil, nil
	}
	pk, err := r.pubkey()
	if err != nil {
		return nil, err
	}
	return &pk, nil
}

// Decode разбирает сырые байты аккаунта в Data.
// Раскладка позиционная и без версии: поля читаются строго по порядку.
// Поля до bounty включительно обязательны; хвост (name и далее)
// читается по возможности — см. комментарий к Data.
func Decode(data []byte) (*Data, error) {
	r := &reader{data: data}

	if err := r.skip(discriminatorLen); err != nil {
		return nil, err
	}

	var (
		d   Data
		err error
	)
	if d.Owner, err = r.pubkey(); err != nil {
		return nil, err
	}
	if d.Recipient, err = r.pubkey(); err != nil {
		return nil, err
	}
	if d.ContentCID, err = r.str(); err != nil {
		return nil, err
	}
	if d.EncryptedKey, err = r.str(); err != nil {
		return nil, err
	}
	if d.TimeInterval, err = r.u64(); err != nil {
		return nil, err
	}
	if d.LastCheckIn, err = r.u64(); err != nil {
		return nil, err
	}
	released, err := r.u8()
	if err != nil {
		return nil, err
	}
	d.IsReleased = released == 1
	if d.VaultSeed, err = r.u64(); err != nil {
		return nil, err
	}
	if d.Bump, err = r.u8(); err != nil {
		return nil, err
	}
	if d.Delegate, err = r.optPubkey(); err != nil {
		return nil, err
	}
	if d.Bounty, err = r.u64(); err != nil {
		return nil, err
	}

	if err := decodeTail(r, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// decodeTail читает необязательный хвост аккаунта. Нехватка байтов на любом
// шаге просто останавливает чтение: аккаунты старых раскладок остаются
// валидными, поля получают нулевые значения. Невалидный UTF-8 в name всё же
// фатален — это повреждение данных, а не старая раскладка.
func decodeTail(r *reader, d *Data) error {
	name, err := r.str()
	if errors.Is(err, ErrInvalidUTF8) {
		return err
	}
	if err != nil {
		return nil
	}
	d.Name = name

	if d.LockedAmount, err = r.u64(); err != nil {
		return nil
	}

	tag, err := r.u8()
	if err != nil {
		return nil
	}
	if tag == 1 {
		pk, pkErr := r.pubkey()
		if pkErr != nil {
			return nil
		}
		d.TokenMint = &pk
	}

	if v, err := r.u64(); err == nil {
		d.LockedTokens = v
	}
	return nil
}
