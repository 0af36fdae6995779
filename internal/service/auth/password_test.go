package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	t.Parallel()

	hasher := NewBcryptHasher(bcrypt.MinCost)
	verifier := NewBcryptVerifier()

	hash, err := hasher.Hash("a long enough password")
	require.NoError(t, err)
	assert.NotEqual(t, "a long enough password", hash)

	assert.NoError(t, verifier.Compare(hash, "a long enough password"))
	assert.Error(t, verifier.Compare(hash, "the wrong password"))
}

func TestBcryptHasherDefaultCost(t *testing.T) {
	t.Parallel()

	hasher := NewBcryptHasher(0)
	assert.Equal(t, bcrypt.DefaultCost, hasher.cost)
}

func TestBcryptHasherRejectsOverlongPassword(t *testing.T) {
	t.Parallel()

	hasher := NewBcryptHasher(bcrypt.MinCost)

	long := make([]byte, 80)
	for i := range long {
		long[i] = 'x'
	}

	// bcrypt refuses inputs over 72 bytes
	_, err := hasher.Hash(string(long))
	assert.Error(t, err)
}
