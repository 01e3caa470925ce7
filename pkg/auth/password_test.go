package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	t.Parallel()

	record, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("correct horse battery staple", record))
	assert.False(t, CheckPasswordHash("correct horse battery stapl", record))
	assert.False(t, CheckPasswordHash("", record))
}

func TestHashPassword_SaltUniqueness(t *testing.T) {
	t.Parallel()

	first, err := HashPassword("samepassword")
	require.NoError(t, err)
	second, err := HashPassword("samepassword")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, CheckPasswordHash("samepassword", first))
	assert.True(t, CheckPasswordHash("samepassword", second))
}

func TestHashPassword_RecordFormat(t *testing.T) {
	t.Parallel()

	record, err := HashPassword("whatever123")
	require.NoError(t, err)

	salt, key, ok := strings.Cut(record, ":")
	require.True(t, ok)
	assert.Len(t, salt, saltSize*2)
	assert.Len(t, key, keySize*2)
}

func TestCheckPasswordHash_MalformedRecords(t *testing.T) {
	t.Parallel()

	cases := []string{
		"",
		"nocolon",
		":missingsalt",
		"missingkey:",
		"salt:not-hex!",
	}
	for _, record := range cases {
		assert.False(t, CheckPasswordHash("password", record), "record %q", record)
	}
}
