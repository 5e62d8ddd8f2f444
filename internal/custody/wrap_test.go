package custody

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSigner(t *testing.T, fill byte) *WalletSigner {
	t.Helper()
	s, err := WalletSignerFromSeed(bytes.Repeat([]byte{fill}, 32))
	require.NoError(t, err)
	return s
}

func TestWrapKeyWithPassword_RoundTrip(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	w, err := WrapKeyWithPassword(key, "correct horse")
	require.NoError(t, err)

	got, err := UnwrapKeyWithPassword(w, "correct horse")
	require.NoError(t, err)
	assert.Equal(t, key, got)
}

func TestUnwrapKeyWithPassword_WrongPassword(t *testing.T) {
	key, _ := GenerateKey()
	w, err := WrapKeyWithPassword(key, "right")
	require.NoError(t, err)

	// неверный пароль — именно криптографический отказ, не ошибка формата
	_, err = UnwrapKeyWithPassword(w, "wrong")
	assert.ErrorIs(t, err, ErrDecryptFailed)
	assert.NotErrorIs(t, err, ErrBadEnvelope)
}

func TestUnwrapKeyWithPassword_MalformedEnvelope(t *testing.T) {
	key, _ := GenerateKey()
	w, err := WrapKeyWithPassword(key, "pw")
	require.NoError(t, err)

	w.Salt = "***"
	_, err = UnwrapKeyWithPassword(w, "pw")
	assert.ErrorIs(t, err, ErrBadEnvelope)
}

func TestWrapKeyWithWallet_RoundTrip(t *testing.T) {
	recipientWallet := testSigner(t, 7)
	key, err := GenerateKey()
	require.NoError(t, err)

	wk, err := WrapKeyWithWallet(key, recipientWallet, recipientWallet.PublicKey(), 1_699_000_000)
	require.NoError(t, err)
	assert.Equal(t, recipientWallet.PublicKey().Base58(), wk.RecipientPubkey)

	got, err := UnwrapKeyWithWallet(wk, recipientWallet)
	require.NoError(t, err)
	assert.Equal(t, key, got)
}

func TestUnwrapKeyWithWallet_WrongIdentity(t *testing.T) {
	recipientWallet := testSigner(t, 7)
	strangerWallet := testSigner(t, 8)

	key, _ := GenerateKey()
	wk, err := WrapKeyWithWallet(key, recipientWallet, recipientWallet.PublicKey(), 42)
	require.NoError(t, err)

	_, err = UnwrapKeyWithWallet(wk, strangerWallet)
	assert.ErrorIs(t, err, ErrWrongIdentity)
}

// Разные vault'ы (разный seed) дают разные KEK даже для одного кошелька:
// envelope одного vault не разворачивается контекстом другого.
func TestWalletKEK_BoundToVaultSeed(t *testing.T) {
	w := testSigner(t, 7)
	key, _ := GenerateKey()

	wk, err := WrapKeyWithWallet(key, w, w.PublicKey(), 100)
	require.NoError(t, err)

	wk.VaultSeed = "200"
	_, err = UnwrapKeyWithWallet(wk, w)
	assert.ErrorIs(t, err, ErrDecryptFailed)
}

func TestEnvelope_PasswordRoundTrip(t *testing.T) {
	plain := []byte("the deed to the house")
	env, err := SealWithPassword(plain, "hunter2", "deed.pdf", "application/pdf")
	require.NoError(t, err)
	require.NoError(t, env.Validate())
	assert.Equal(t, ModePassword, env.Mode)
	assert.Nil(t, env.WalletKey)

	got, err := env.OpenWithPassword("hunter2")
	require.NoError(t, err)
	assert.Equal(t, plain, got)

	_, err = env.OpenWithPassword("wrong")
	assert.ErrorIs(t, err, ErrDecryptFailed)
}

func TestEnvelope_WalletRoundTrip(t *testing.T) {
	w := testSigner(t, 3)
	plain := []byte("seed phrase: ...")

	env, err := SealWithWallet(plain, w, w.PublicKey(), 77, "keys.txt", "text/plain")
	require.NoError(t, err)
	require.NoError(t, env.Validate())
	assert.Equal(t, ModeWallet, env.Mode)
	assert.Nil(t, env.KeyWrapper)

	got, err := env.OpenWithWallet(w)
	require.NoError(t, err)
	assert.Equal(t, plain, got)
}

// Mode авторитетен: оба envelope сразу или несовпадение с тегом — брак.
func TestEnvelope_Validate(t *testing.T) {
	w := testSigner(t, 3)
	env, err := SealWithWallet([]byte("x"), w, w.PublicKey(), 1, "f", "t")
	require.NoError(t, err)

	env.KeyWrapper = &KeyWrapper{}
	assert.ErrorIs(t, env.Validate(), ErrBadEnvelope)

	env.KeyWrapper = nil
	env.Mode = "pigeon"
	assert.ErrorIs(t, env.Validate(), ErrBadEnvelope)

	env.Mode = ModePassword
	assert.ErrorIs(t, env.Validate(), ErrBadEnvelope)
}
