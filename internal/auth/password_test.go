package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/moneyhive-bank/internal/config"
)

// fastParams keeps the suite quick; production defaults are tested once.
var fastParams = config.Hashing{Iterations: 1000, SaltBytes: 16, KeyBytes: 32}

func TestHashVerify_RoundTrip(t *testing.T) {
	h := NewHasher(fastParams)
	for _, pw := range []string{"hunter2", "", "pässwörd", strings.Repeat("x", 500)} {
		hash, err := h.Hash(pw)
		require.NoError(t, err)
		assert.True(t, h.Verify(pw, hash), "password %q", pw)
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	h := NewHasher(fastParams)
	hash, err := h.Hash("correct horse")
	require.NoError(t, err)

	assert.False(t, h.Verify("correct horse ", hash))
	assert.False(t, h.Verify("Correct horse", hash))
	assert.False(t, h.Verify("", hash))
}

func TestHash_SaltsDiffer(t *testing.T) {
	h := NewHasher(fastParams)
	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("same", a))
	assert.True(t, h.Verify("same", b))
}

func TestHash_Format(t *testing.T) {
	h := NewHasher(config.DefaultHashing())
	hash, err := h.Hash("pw")
	require.NoError(t, err)

	parts := strings.Split(hash, "$")
	require.Len(t, parts, 5)
	assert.Equal(t, "pbkdf2-sha256", parts[1])
	assert.Equal(t, "29000", parts[2])

	salt, err := ab64.DecodeString(parts[3])
	require.NoError(t, err)
	assert.Len(t, salt, 16)
	digest, err := ab64.DecodeString(parts[4])
	require.NoError(t, err)
	assert.Len(t, digest, 32)
	assert.NotContains(t, hash, "+")
	assert.NotContains(t, hash, "=")
}

func TestVerify_ExistingHashes(t *testing.T) {
	// Produced by PBKDF2-HMAC-SHA256 with salt "moneyhive-salt16".
	tests := []struct {
		name string
		hash string
	}{
		{name: "default rounds", hash: "$pbkdf2-sha256$29000$bW9uZXloaXZlLXNhbHQxNg$rOIXOjwqDKlvE.TovFSG/qHqjzZ7N3k/Mg9/tCs6Zt8"},
		{name: "low rounds", hash: "$pbkdf2-sha256$1000$bW9uZXloaXZlLXNhbHQxNg$5roLM4UQzoPY.HAswT8Pr9M9n/1J4jlQ2ihoq3Y.IUM"},
	}
	h := NewHasher(fastParams)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, h.Verify("hunter2", tt.hash))
			assert.False(t, h.Verify("hunter3", tt.hash))
		})
	}
}

func TestVerify_MalformedHash(t *testing.T) {
	h := NewHasher(fastParams)
	valid, err := h.Hash("pw")
	require.NoError(t, err)
	parts := strings.Split(valid, "$")

	cases := map[string]string{
		"empty":            "",
		"plaintext":        "pw",
		"bcrypt":           "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy",
		"wrong ident":      "$pbkdf2-sha512$" + strings.Join(parts[2:], "$"),
		"missing digest":   "$pbkdf2-sha256$1000$" + parts[3],
		"extra field":      valid + "$extra",
		"rounds not int":   "$pbkdf2-sha256$many$" + parts[3] + "$" + parts[4],
		"rounds zero":      "$pbkdf2-sha256$0$" + parts[3] + "$" + parts[4],
		"rounds negative":  "$pbkdf2-sha256$-5$" + parts[3] + "$" + parts[4],
		"rounds padded":    "$pbkdf2-sha256$01000$" + parts[3] + "$" + parts[4],
		"rounds too large": "$pbkdf2-sha256$999999999$" + parts[3] + "$" + parts[4],
		"bad salt":         "$pbkdf2-sha256$1000$***$" + parts[4],
		"empty digest":     "$pbkdf2-sha256$1000$" + parts[3] + "$",
		"bad digest":       "$pbkdf2-sha256$1000$" + parts[3] + "$!!!",
		"no leading $":     strings.TrimPrefix(valid, "$"),
	}
	for name, hash := range cases {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.False(t, h.Verify("pw", hash))
			})
		})
	}
}

func TestVerify_UsesParametersFromHash(t *testing.T) {
	old := NewHasher(config.Hashing{Iterations: 1000, SaltBytes: 8, KeyBytes: 16})
	hash, err := old.Hash("pw")
	require.NoError(t, err)

	current := NewHasher(config.Hashing{Iterations: 2000, SaltBytes: 16, KeyBytes: 32})
	assert.True(t, current.Verify("pw", hash))
}

func TestDummy(t *testing.T) {
	h := NewHasher(fastParams)
	dummy := h.Dummy()
	require.NotEmpty(t, dummy)
	_, _, _, err := parseHash(dummy)
	assert.NoError(t, err)
	assert.False(t, h.Verify("", dummy))
}
