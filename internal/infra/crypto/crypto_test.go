package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestNewEncryptor_InvalidKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"empty", ""},
		{"not hex", strings.Repeat("zz", KeySize)},
		{"too short", "0011"},
		{"too long", testKey + "00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEncryptor(tt.key)
			assert.ErrorIs(t, err, ErrInvalidKey)
		})
	}
}

func TestEncryptor_RoundTrip(t *testing.T) {
	e, err := NewEncryptor(testKey)
	require.NoError(t, err)

	plaintext := []byte(`[{"text":"buy milk","id":1,"done":false}]`)
	ciphertext := e.Encrypt(plaintext)

	assert.NotContains(t, string(ciphertext), "buy milk")
	assert.Len(t, ciphertext, NonceSize+len(plaintext)+16)

	got, err := e.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestEncryptor_Deterministic(t *testing.T) {
	e, err := NewEncryptor(testKey)
	require.NoError(t, err)

	a := e.Encrypt([]byte("same"))
	b := e.Encrypt([]byte("same"))
	c := e.Encrypt([]byte("other"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a[:NonceSize], c[:NonceSize])
}

func TestEncryptor_EmptyValue(t *testing.T) {
	e, err := NewEncryptor(testKey)
	require.NoError(t, err)

	got, err := e.Decrypt(e.Encrypt(nil))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEncryptor_DecryptErrors(t *testing.T) {
	e, err := NewEncryptor(testKey)
	require.NoError(t, err)

	_, err = e.Decrypt([]byte("short"))
	assert.ErrorIs(t, err, ErrCiphertextTooShort)

	ciphertext := e.Encrypt([]byte("value"))
	ciphertext[len(ciphertext)-1] ^= 0xff
	_, err = e.Decrypt(ciphertext)
	assert.ErrorIs(t, err, ErrDecryptionFailed)

	otherKey, err := GenerateKey()
	require.NoError(t, err)
	other, err := NewEncryptor(otherKey)
	require.NoError(t, err)
	_, err = other.Decrypt(e.Encrypt([]byte("value")))
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestGenerateKey(t *testing.T) {
	a, err := GenerateKey()
	require.NoError(t, err)
	b, err := GenerateKey()
	require.NoError(t, err)

	assert.Len(t, a, KeySize*2)
	assert.NotEqual(t, a, b)
	_, err = NewEncryptor(a)
	assert.NoError(t, err)
}
