// Package password hashes and verifies login credentials.
//
// Hashes are self-describing: the scheme and its parameters are encoded
// alongside the digest, so verification never depends on the current
// policy. PBKDF2 hashes use the werkzeug layout
// "pbkdf2:<digest>:<iterations>$<salt>$<hex>" which keeps accounts created
// by earlier deployments valid.
package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

const (
	SchemePBKDF2SHA256 = "pbkdf2:sha256"
	SchemeBcrypt       = "bcrypt"

	DefaultIterations = 600000
	DefaultSaltLength = 16
	MinSaltLength     = 8

	// legacyIterations applies to pbkdf2 hashes that omit the iteration count.
	legacyIterations = 260000

	saltAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var ErrUnsupportedScheme = errors.New("unsupported password scheme")

// Policy selects how new hashes are produced.
type Policy struct {
	Scheme     string
	Iterations int
	SaltLength int
	BcryptCost int
}

func DefaultPolicy() Policy {
	return Policy{
		Scheme:     SchemePBKDF2SHA256,
		Iterations: DefaultIterations,
		SaltLength: DefaultSaltLength,
		BcryptCost: bcrypt.DefaultCost,
	}
}

// Hash encodes password under the policy.
func (p Policy) Hash(password string) (string, error) {
	switch p.Scheme {
	case "", SchemePBKDF2SHA256:
		iterations := p.Iterations
		if iterations <= 0 {
			iterations = DefaultIterations
		}
		saltLen := p.SaltLength
		if saltLen < MinSaltLength {
			saltLen = MinSaltLength
		}
		salt, err := generateSalt(saltLen)
		if err != nil {
			return "", fmt.Errorf("generate salt: %w", err)
		}
		digest := pbkdf2.Key([]byte(password), []byte(salt), iterations, sha256.Size, sha256.New)
		return fmt.Sprintf("%s:%d$%s$%s", SchemePBKDF2SHA256, iterations, salt, hex.EncodeToString(digest)), nil
	case SchemeBcrypt:
		cost := p.BcryptCost
		if cost == 0 {
			cost = bcrypt.DefaultCost
		}
		h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
		if err != nil {
			return "", fmt.Errorf("bcrypt hash: %w", err)
		}
		return string(h), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedScheme, p.Scheme)
	}
}

// Verify reports whether password matches encoded. Malformed or unknown
// encodings never match.
func Verify(encoded, password string) bool {
	if strings.HasPrefix(encoded, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password)) == nil
	}

	method, salt, want, ok := splitPBKDF2(encoded)
	if !ok {
		return false
	}
	newHash, iterations, ok := parseMethod(method)
	if !ok {
		return false
	}
	wantDigest, err := hex.DecodeString(want)
	if err != nil || len(wantDigest) == 0 {
		return false
	}

	got := pbkdf2.Key([]byte(password), []byte(salt), iterations, len(wantDigest), newHash)
	return subtle.ConstantTimeCompare(got, wantDigest) == 1
}

func splitPBKDF2(encoded string) (method, salt, digest string, ok bool) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 3 || parts[1] == "" {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

// parseMethod understands "pbkdf2:<digest>[:<iterations>]".
func parseMethod(method string) (func() hash.Hash, int, bool) {
	fields := strings.Split(method, ":")
	if len(fields) < 2 || len(fields) > 3 || fields[0] != "pbkdf2" {
		return nil, 0, false
	}

	var newHash func() hash.Hash
	switch fields[1] {
	case "sha256":
		newHash = sha256.New
	case "sha512":
		newHash = sha512.New
	default:
		return nil, 0, false
	}

	iterations := legacyIterations
	if len(fields) == 3 {
		n, err := strconv.Atoi(fields[2])
		if err != nil || n <= 0 {
			return nil, 0, false
		}
		iterations = n
	}
	return newHash, iterations, true
}

func generateSalt(n int) (string, error) {
	limit := big.NewInt(int64(len(saltAlphabet)))
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(saltAlphabet[idx.Int64()])
	}
	return b.String(), nil
}
