package dtu

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEncRand() []byte {
	b, _ := hex.DecodeString("00112233445566778899aabbccddeeff")
	return b
}

func TestDeriveKeyNonce_Deterministic(t *testing.T) {
	encRand := testEncRand()
	require.Len(t, encRand, 16)

	key1 := deriveKey(encRand)
	key2 := deriveKey(encRand)
	assert.Equal(t, key1, key2)
	assert.Len(t, key1, 16)

	nonce1 := deriveNonce(0x1234, 0x0001, encRand)
	nonce2 := deriveNonce(0x1234, 0x0001, encRand)
	assert.Equal(t, nonce1, nonce2)
	assert.Len(t, nonce1, 12)

	// Different sequence must change the nonce (nonce binds command+sequence).
	nonceOtherSeq := deriveNonce(0x1234, 0x0002, encRand)
	assert.NotEqual(t, nonce1, nonceOtherSeq)

	nonceOtherCmd := deriveNonce(0x1235, 0x0001, encRand)
	assert.NotEqual(t, nonce1, nonceOtherCmd)
}

func TestSealOpen_RoundTrip(t *testing.T) {
	encRand := testEncRand()
	plaintext := []byte("app info data payload")

	sealed, err := sealPayload(encRand, 0x0130, 7, plaintext)
	require.NoError(t, err)
	assert.Len(t, sealed, len(plaintext)+gcmTagLen)

	opened, err := openPayload(encRand, 0x0130, 7, sealed)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestOpen_TamperedCiphertextFails(t *testing.T) {
	encRand := testEncRand()
	sealed, err := sealPayload(encRand, 0x0130, 1, []byte("payload"))
	require.NoError(t, err)

	sealed[0] ^= 0xFF
	_, err = openPayload(encRand, 0x0130, 1, sealed)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestOpen_TamperedTagFails(t *testing.T) {
	encRand := testEncRand()
	sealed, err := sealPayload(encRand, 0x0130, 1, []byte("payload"))
	require.NoError(t, err)

	sealed[len(sealed)-1] ^= 0xFF
	_, err = openPayload(encRand, 0x0130, 1, sealed)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestOpen_WrongSequenceFails(t *testing.T) {
	encRand := testEncRand()
	sealed, err := sealPayload(encRand, 0x0130, 1, []byte("payload"))
	require.NoError(t, err)

	_, err = openPayload(encRand, 0x0130, 2, sealed)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}
