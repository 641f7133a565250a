package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fast keeps the suite quick; iteration count does not change correctness.
var fast = Policy{Scheme: SchemePBKDF2SHA256, Iterations: 1000, SaltLength: DefaultSaltLength}

func TestHashVerifyProperty(t *testing.T) {
	for _, pw := range []string{"pw1", "", "correct horse battery staple", "ünïcödé", strings.Repeat("x", 200)} {
		encoded, err := fast.Hash(pw)
		require.NoError(t, err)

		assert.True(t, Verify(encoded, pw), "password %q", pw)
		assert.False(t, Verify(encoded, pw+"x"), "password %q", pw)
	}
}

func TestHashEncoding(t *testing.T) {
	encoded, err := fast.Hash("pw1")
	require.NoError(t, err)

	parts := strings.Split(encoded, "$")
	require.Len(t, parts, 3)
	assert.Equal(t, "pbkdf2:sha256:1000", parts[0])
	assert.Len(t, parts[1], DefaultSaltLength)
	assert.Len(t, parts[2], 64)

	other, err := fast.Hash("pw1")
	require.NoError(t, err)
	assert.NotEqual(t, encoded, other, "salts must differ")
}

func TestSaltLengthIsClamped(t *testing.T) {
	p := fast
	p.SaltLength = 2

	encoded, err := p.Hash("pw1")
	require.NoError(t, err)
	assert.Len(t, strings.Split(encoded, "$")[1], MinSaltLength)
}

func TestVerifyWerkzeugHashes(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{
			name:    "explicit iterations",
			encoded: "pbkdf2:sha256:600000$saltsalt$46180384cc5d0968ec526802510c130de02790759e30e3c13276bf2f3291d077",
		},
		{
			name:    "legacy without iterations",
			encoded: "pbkdf2:sha256$Ab3dEf9h$5be478e7e6ab981964d02ae645793dbee48cc4d17a28c5bf0bcbaa300f00fec7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, Verify(tt.encoded, "pw1"))
			assert.False(t, Verify(tt.encoded, "pw2"))
		})
	}
}

func TestPolicyChangeKeepsOldHashesValid(t *testing.T) {
	old := Policy{Scheme: SchemePBKDF2SHA256, Iterations: 500, SaltLength: 8}
	encoded, err := old.Hash("pw1")
	require.NoError(t, err)

	// the verifier only reads parameters from the encoded hash
	assert.True(t, Verify(encoded, "pw1"))
}

func TestBcrypt(t *testing.T) {
	p := Policy{Scheme: SchemeBcrypt, BcryptCost: 4}

	encoded, err := p.Hash("pw1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$2"))
	assert.True(t, Verify(encoded, "pw1"))
	assert.False(t, Verify(encoded, "pw1x"))
}

func TestVerifyMalformed(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plaintext",
		"pbkdf2:sha256:1000$salt",
		"pbkdf2:md5:1000$salt$abcd",
		"pbkdf2:sha256:zero$salt$abcd",
		"pbkdf2:sha256:1000$salt$not-hex",
		"scrypt:32768:8:1$salt$abcd",
		"$2b$invalid",
	} {
		assert.False(t, Verify(encoded, "pw1"), "encoded %q", encoded)
	}
}

func TestUnsupportedScheme(t *testing.T) {
	_, err := Policy{Scheme: "md5"}.Hash("pw1")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}
