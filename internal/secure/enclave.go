// Package secure wraps memguard to keep captured credentials (passwords,
// tokens) encrypted at rest in memory between the prompt and the auth call.
package secure

import (
	"sync"

	"github.com/awnumar/memguard"
)

// SecureBuffer holds sensitive bytes in an encrypted memguard enclave. The
// plaintext only exists while an opened LockedBuffer is alive; callers must
// Destroy the locked buffer as soon as they are done with it.
type SecureBuffer struct {
	enclave   *memguard.Enclave
	mu        sync.RWMutex
	destroyed bool
}

// NewSecureBuffer copies data into a protected enclave. The caller should
// zero the original slice afterwards; memguard wipes its own copy on exit.
func NewSecureBuffer(data []byte) *SecureBuffer {
	return &SecureBuffer{
		enclave: memguard.NewEnclave(data),
	}
}

// Open decrypts the enclave into a locked buffer. The caller MUST call
// Destroy on the returned buffer when done:
//
//	locked, err := buf.Open()
//	if err != nil {
//	    return err
//	}
//	defer locked.Destroy()
//	use(locked.Bytes())
func (s *SecureBuffer) Open() (*memguard.LockedBuffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.destroyed {
		return memguard.NewBufferFromBytes([]byte{}), nil
	}
	return s.enclave.Open()
}

// Destroy marks the buffer unusable. Idempotent. The enclave ciphertext is
// safe to leave for the garbage collector.
func (s *SecureBuffer) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyed = true
}
