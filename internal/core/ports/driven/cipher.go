package driven

// Cipher provides authenticated symmetric encryption for data at rest.
type Cipher interface {
	// Encrypt returns nonce || ciphertext. A fresh nonce is drawn per call.
	Encrypt(plaintext []byte) ([]byte, error)

	// Decrypt reverses Encrypt. Tampered or truncated blobs fail with
	// domain.ErrDecrypt.
	Decrypt(blob []byte) ([]byte, error)

	// Ephemeral reports whether the key was generated for this process only.
	Ephemeral() bool
}
