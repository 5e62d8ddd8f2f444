package vault

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buf — конструктор тестовых буферов в раскладке аккаунта.
type buf struct{ b []byte }

func (w *buf) disc() *buf               { w.b = append(w.b, make([]byte, 8)...); return w }
func (w *buf) raw(p []byte) *buf        { w.b = append(w.b, p...); return w }
func (w *buf) u8(v uint8) *buf          { w.b = append(w.b, v); return w }
func (w *buf) u64(v uint64) *buf        { w.b = binary.LittleEndian.AppendUint64(w.b, v); return w }
func (w *buf) str(s string) *buf {
	w.b = binary.LittleEndian.AppendUint32(w.b, uint32(len(s)))
	return w.raw([]byte(s))
}

func pk(fill byte) PublicKey {
	var p PublicKey
	for i := range p {
		p[i] = fill
	}
	return p
}

// полный буфер со всеми полями, включая хвост
func fullAccount() []byte {
	owner, recipient, delegate, mint := pk(1), pk(2), pk(3), pk(4)
	w := (&buf{}).disc().
		raw(owner[:]).
		raw(recipient[:]).
		str("QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG").
		str("ZW5jcnlwdGVkLWtleQ==").
		u64(86400).
		u64(1_700_000_000).
		u8(0). // is_released
		u64(1_699_000_000).
		u8(254). // bump
		u8(1).raw(delegate[:]). // Some(delegate)
		u64(5_000_000).
		str("family vault").
		u64(10_000_000_000). // locked lamports > 2^32
		u8(1).raw(mint[:]).
		u64(42)
	return w.b
}

func TestDecode_FullRoundTrip(t *testing.T) {
	d, err := Decode(fullAccount())
	require.NoError(t, err)

	assert.Equal(t, pk(1), d.Owner)
	assert.Equal(t, pk(2), d.Recipient)
	assert.Equal(t, "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG", d.ContentCID)
	assert.Equal(t, "ZW5jcnlwdGVkLWtleQ==", d.EncryptedKey)
	assert.Equal(t, uint64(86400), d.TimeInterval)
	assert.Equal(t, uint64(1_700_000_000), d.LastCheckIn)
	assert.False(t, d.IsReleased)
	assert.Equal(t, uint64(1_699_000_000), d.VaultSeed)
	assert.Equal(t, uint8(254), d.Bump)
	require.NotNil(t, d.Delegate)
	assert.Equal(t, pk(3), *d.Delegate)
	assert.Equal(t, uint64(5_000_000), d.Bounty)
	assert.Equal(t, "family vault", d.Name)
	assert.Equal(t, uint64(10_000_000_000), d.LockedAmount)
	require.NotNil(t, d.TokenMint)
	assert.Equal(t, pk(4), *d.TokenMint)
	assert.Equal(t, uint64(42), d.LockedTokens)
}

// 64-битные значения за пределами безопасного диапазона float64
// должны проходить без потери точности.
func TestDecode_Uint64Precision(t *testing.T) {
	const big = uint64(1) << 62
	owner, recipient := pk(1), pk(2)
	w := (&buf{}).disc().
		raw(owner[:]).raw(recipient[:]).
		str("cid").str("key").
		u64(big + 1).u64(big + 3).
		u8(0).u64(big + 7).u8(1).
		u8(0). // delegate: None
		u64(big + 9)

	d, err := Decode(w.b)
	require.NoError(t, err)
	assert.Equal(t, big+1, d.TimeInterval)
	assert.Equal(t, big+3, d.LastCheckIn)
	assert.Equal(t, big+7, d.VaultSeed)
	assert.Equal(t, big+9, d.Bounty)
	assert.Nil(t, d.Delegate)
}

// Аккаунт старой раскладки: обрывается сразу после bounty.
// Имя и хвост подставляются пустыми, ошибки нет.
func TestDecode_LegacyAccountWithoutTail(t *testing.T) {
	owner, recipient := pk(1), pk(2)
	w := (&buf{}).disc().
		raw(owner[:]).raw(recipient[:]).
		str("cid").str("key").
		u64(3600).u64(100).
		u8(1). // released
		u64(7).u8(255).
		u8(0).
		u64(0)

	d, err := Decode(w.b)
	require.NoError(t, err)
	assert.True(t, d.IsReleased)
	assert.Empty(t, d.Name)
	assert.Zero(t, d.LockedAmount)
	assert.Nil(t, d.TokenMint)
	assert.Zero(t, d.LockedTokens)
}

// Префикс длины имени объявляет больше байтов, чем осталось, —
// имя остаётся пустым, запись валидна.
func TestDecode_NameLengthOverrun(t *testing.T) {
	owner, recipient := pk(1), pk(2)
	w := (&buf{}).disc().
		raw(owner[:]).raw(recipient[:]).
		str("cid").str("key").
		u64(3600).u64(100).u8(0).u64(7).u8(255).u8(0).u64(0)
	// 4 байта длины, указывающей за конец буфера
	w.b = binary.LittleEndian.AppendUint32(w.b, 1000)
	w.raw([]byte("xx"))

	d, err := Decode(w.b)
	require.NoError(t, err)
	assert.Empty(t, d.Name)
}

func TestDecode_Truncated(t *testing.T) {
	full := fullAccount()
	// Обрезки в обязательной части: от пустого буфера до последнего
	// байта перед bounty.
	cuts := []int{0, 4, 8, 30, 40, 71, 75, 80, 100, 120, 130}
	for _, n := range cuts {
		if n > len(full) {
			continue
		}
		_, err := Decode(full[:n])
		assert.ErrorIs(t, err, ErrTruncated, "cut at %d", n)
	}
}

// Объявленная длина строки выводит за конец буфера — тоже Truncated.
func TestDecode_StringOverrunIsTruncated(t *testing.T) {
	owner, recipient := pk(1), pk(2)
	w := (&buf{}).disc().raw(owner[:]).raw(recipient[:])
	w.b = binary.LittleEndian.AppendUint32(w.b, 500)
	w.raw([]byte("short"))

	_, err := Decode(w.b)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestDecode_InvalidUTF8(t *testing.T) {
	owner, recipient := pk(1), pk(2)
	w := (&buf{}).disc().raw(owner[:]).raw(recipient[:])
	w.b = binary.LittleEndian.AppendUint32(w.b, 2)
	w.raw([]byte{0xff, 0xfe})

	_, err := Decode(w.b)
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestPublicKey_Base58RoundTrip(t *testing.T) {
	p := pk(9)
	got, err := ParsePublicKey(p.Base58())
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = ParsePublicKey("not-a-key-0OIl")
	assert.Error(t, err)

	_, err = ParsePublicKey("abc") // валидный base58, неверная длина
	assert.Error(t, err)
}
