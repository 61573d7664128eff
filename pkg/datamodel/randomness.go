package datamodel

import (
	"encoding/binary"

	"golang.org/x/crypto/chacha20"
)

// ChachaSource is a deterministic math/rand/v2 Source driven by the ChaCha20
// keystream.  The key is derived from the seed and the nonce is fixed, so two
// sources with the same seed produce the same sequence.  Not safe for
// concurrent use; give every run its own source.
type ChachaSource struct {
	cipher *chacha20.Cipher
	buf    [64]byte
	pos    int
}

// NewSource returns a ChaCha20 source for seed.
func NewSource(seed uint64) *ChachaSource {
	var key [chacha20.KeySize]byte
	var nonce [chacha20.NonceSize]byte
	binary.LittleEndian.PutUint64(key[0:], seed)

	c, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		// only possible with a bad key or nonce length
		panic(err)
	}
	s := &ChachaSource{cipher: c}
	s.pos = len(s.buf)
	return s
}

// Uint64 returns the next 8 bytes of keystream.
func (s *ChachaSource) Uint64() uint64 {
	if s.pos+8 > len(s.buf) {
		clear(s.buf[:])
		s.cipher.XORKeyStream(s.buf[:], s.buf[:])
		s.pos = 0
	}
	v := binary.LittleEndian.Uint64(s.buf[s.pos:])
	s.pos += 8
	return v
}
