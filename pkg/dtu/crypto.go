package dtu

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// tripleSHA256 applies SHA-256 three times, as required by the key and
// nonce derivation in §4.2.
func tripleSHA256(data []byte) [32]byte {
	h := sha256.Sum256(data)
	h = sha256.Sum256(h[:])
	h = sha256.Sum256(h[:])
	return h
}

// deriveKey computes K = SHA256(SHA256(SHA256(encRand)))[0:16].
func deriveKey(encRand []byte) []byte {
	h := tripleSHA256(encRand)
	key := make([]byte, 16)
	copy(key, h[:16])
	return key
}

// deriveNonce computes N = SHA256(SHA256(SHA256(LE16(command)||LE16(sequence)||encRand)))[20:32].
func deriveNonce(command, sequence uint16, encRand []byte) []byte {
	input := make([]byte, 4+len(encRand))
	binary.LittleEndian.PutUint16(input[0:2], command)
	binary.LittleEndian.PutUint16(input[2:4], sequence)
	copy(input[4:], encRand)

	h := tripleSHA256(input)
	nonce := make([]byte, 12)
	copy(nonce, h[20:32])
	return nonce
}

// associatedData builds the 4-byte AAD = LE16(command)||LE16(sequence).
func associatedData(command, sequence uint16) []byte {
	aad := make([]byte, 4)
	binary.LittleEndian.PutUint16(aad[0:2], command)
	binary.LittleEndian.PutUint16(aad[2:4], sequence)
	return aad
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("dtu: aes cipher: %w", err)
	}
	return cipher.NewGCMWithNonceSize(block, 12)
}

// sealPayload seals plaintext for the given command/sequence, returning
// ciphertext||tag (§4.2 Seal).
func sealPayload(encRand []byte, command, sequence uint16, plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(deriveKey(encRand))
	if err != nil {
		return nil, err
	}
	nonce := deriveNonce(command, sequence, encRand)
	aad := associatedData(command, sequence)
	return gcm.Seal(nil, nonce, plaintext, aad), nil
}

// openPayload opens ciphertext||tag for the given command/sequence,
// returning the plaintext (§4.2 Open). A failed authentication is
// reported as ErrAuthenticationFailed.
func openPayload(encRand []byte, command, sequence uint16, sealed []byte) ([]byte, error) {
	gcm, err := newGCM(deriveKey(encRand))
	if err != nil {
		return nil, err
	}
	nonce := deriveNonce(command, sequence, encRand)
	aad := associatedData(command, sequence)
	plaintext, err := gcm.Open(nil, nonce, sealed, aad)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}
	return plaintext, nil
}
