package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T, ttl time.Duration) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec([]byte("test-secret"), "EasyGameTopUp", "easygametopup-users", ttl)
	require.NoError(t, err)
	return codec
}

func TestNewTokenCodec_EmptySecret(t *testing.T) {
	t.Parallel()

	_, err := NewTokenCodec(nil, "iss", "aud", time.Minute)
	assert.Error(t, err)
}

func TestTokenCodec_MintVerify(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, 15*time.Minute)

	token, err := codec.Mint("user-1", "a@x.com", "USER")
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "USER", claims.Role)
	assert.Equal(t, "EasyGameTopUp", claims.Issuer)
}

func TestTokenCodec_TamperedSegments(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, 15*time.Minute)
	token, err := codec.Mint("user-1", "a@x.com", "USER")
	require.NoError(t, err)

	// Mutating any segment must invalidate the token.
	segments := strings.Split(token, ".")
	require.Len(t, segments, 3)

	for i := range segments {
		mutated := make([]string, 3)
		copy(mutated, segments)

		head := mutated[i][0]
		if head == 'e' {
			mutated[i] = "f" + mutated[i][1:]
		} else {
			mutated[i] = "e" + mutated[i][1:]
		}

		_, err := codec.Verify(strings.Join(mutated, "."))
		assert.ErrorIs(t, err, ErrInvalidToken, "mutated segment %d", i)
	}
}

func TestTokenCodec_Expired(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, -1*time.Second)
	token, err := codec.Mint("user-1", "a@x.com", "USER")
	require.NoError(t, err)

	_, err = codec.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenCodec_WrongSecret(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, time.Minute)
	other, err := NewTokenCodec([]byte("other-secret"), "EasyGameTopUp", "easygametopup-users", time.Minute)
	require.NoError(t, err)

	token, err := codec.Mint("user-1", "a@x.com", "USER")
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenCodec_AudienceAndIssuerMismatch(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, time.Minute)
	token, err := codec.Mint("user-1", "a@x.com", "USER")
	require.NoError(t, err)

	wrongAud, err := NewTokenCodec([]byte("test-secret"), "EasyGameTopUp", "someone-else", time.Minute)
	require.NoError(t, err)
	_, err = wrongAud.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongIss, err := NewTokenCodec([]byte("test-secret"), "SomeoneElse", "easygametopup-users", time.Minute)
	require.NoError(t, err)
	_, err = wrongIss.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenCodec_Malformed(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, time.Minute)

	for _, token := range []string{"", "not-a-jwt", "a.b", "a.b.c.d", "%%%.%%%.%%%"} {
		_, err := codec.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}
