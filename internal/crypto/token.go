package crypto

import (
	"context"
	"sync"
)

type decrypter interface {
	KmsDecrypt(ctx context.Context, ciphertext string) (string, error)
}

// SealedToken is a gateway token stored as KMS ciphertext in the environment.
// The first successful decrypt is cached for the life of the process.
type SealedToken struct {
	kms        decrypter
	ciphertext string

	mu    sync.Mutex
	plain string
}

func NewSealedToken(kms decrypter, ciphertext string) *SealedToken {
	return &SealedToken{kms: kms, ciphertext: ciphertext}
}

func (t *SealedToken) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.plain != "" {
		return t.plain, nil
	}
	plain, err := t.kms.KmsDecrypt(ctx, t.ciphertext)
	if err != nil {
		return "", err
	}
	t.plain = plain
	return plain, nil
}
