package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/hongminglow/moneyhive-bank/internal/config"
)

// hashIdent is the modular-crypt identifier for PBKDF2-HMAC-SHA256.
const hashIdent = "pbkdf2-sha256"

// Upper bounds accepted when parsing a stored hash.
const (
	maxRounds      = 1 << 24
	maxDigestBytes = 128
)

var errMalformedHash = errors.New("malformed password hash")

// ab64 is unpadded standard base64 with '.' in place of '+'.
var ab64 = base64.NewEncoding(
	"ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789./",
).WithPadding(base64.NoPadding)

// Hasher produces and checks salted PBKDF2-SHA256 password hashes in the
// form $pbkdf2-sha256$<rounds>$<salt>$<digest>.
type Hasher struct {
	params config.Hashing
}

// NewHasher returns a Hasher that writes hashes with params. Verification
// always uses the parameters embedded in the stored hash.
func NewHasher(params config.Hashing) *Hasher {
	return &Hasher{params: params}
}

// Hash derives a new hash for password with a fresh random salt.
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}
	digest := pbkdf2.Key([]byte(password), salt, h.params.Iterations, h.params.KeyBytes, sha256.New)
	return fmt.Sprintf("$%s$%d$%s$%s", hashIdent, h.params.Iterations, ab64.EncodeToString(salt), ab64.EncodeToString(digest)), nil
}

// Verify reports whether password matches hash. Malformed or foreign
// hashes never match.
func (h *Hasher) Verify(password, hash string) bool {
	rounds, salt, digest, err := parseHash(hash)
	if err != nil {
		return false
	}
	candidate := pbkdf2.Key([]byte(password), salt, rounds, len(digest), sha256.New)
	return subtle.ConstantTimeCompare(candidate, digest) == 1
}

// Dummy returns a valid hash of a random password, used to spend the same
// work on unknown usernames as on real ones.
func (h *Hasher) Dummy() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	hash, err := h.Hash(string(buf))
	if err != nil {
		return ""
	}
	return hash
}

func parseHash(hash string) (int, []byte, []byte, error) {
	// "", ident, rounds, salt, digest
	parts := strings.Split(hash, "$")
	if len(parts) != 5 || parts[0] != "" || parts[1] != hashIdent {
		return 0, nil, nil, errMalformedHash
	}
	rounds, err := strconv.Atoi(parts[2])
	if err != nil || rounds < 1 || rounds > maxRounds || parts[2] != strconv.Itoa(rounds) {
		return 0, nil, nil, errMalformedHash
	}
	salt, err := ab64.DecodeString(parts[3])
	if err != nil {
		return 0, nil, nil, errMalformedHash
	}
	digest, err := ab64.DecodeString(parts[4])
	if err != nil || len(digest) == 0 || len(digest) > maxDigestBytes {
		return 0, nil, nil, errMalformedHash
	}
	return rounds, salt, digest, nil
}
