package prism

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// ErrMalformedHash indicates a stored hash is not in the expected encoding.
var ErrMalformedHash = errors.New("malformed hash")

// Hasher performs one-way hashing of inbound secrets.
type Hasher interface {
	// Hash returns the hash of plaintext as a string.
	// For password hashers (argon2, bcrypt), the result includes salt and parameters.
	// For deterministic hashers (sha256, sha512), the result is a hex-encoded hash.
	Hash(plaintext []byte) (string, error)

	// Verify reports whether plaintext matches a value produced by Hash.
	Verify(hashed string, plaintext []byte) (bool, error)
}

// Argon2Params configures Argon2id hashing.
type Argon2Params struct {
	Time    uint32 // Number of iterations
	Memory  uint32 // Memory usage in KiB
	Threads uint8  // Parallelism factor
	KeyLen  uint32 // Output key length
	SaltLen uint32 // Salt length
}

// DefaultArgon2Params returns recommended Argon2id parameters.
// Based on OWASP recommendations for password hashing.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Time:    1,
		Memory:  64 * 1024, // 64 MiB
		Threads: 4,
		KeyLen:  32,
		SaltLen: 16,
	}
}

// argon2Hasher implements Argon2id password hashing.
type argon2Hasher struct {
	params Argon2Params
}

// Argon2 returns an Argon2id hasher with default parameters.
func Argon2() Hasher {
	return Argon2WithParams(DefaultArgon2Params())
}

// Argon2WithParams returns an Argon2id hasher with custom parameters.
func Argon2WithParams(params Argon2Params) Hasher {
	return &argon2Hasher{params: params}
}

func (h *argon2Hasher) Hash(plaintext []byte) (string, error) {
	salt := make([]byte, h.params.SaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := argon2.IDKey(plaintext, salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)

	// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// Verify recomputes the hash with the parameters encoded in hashed, so values
// produced under older parameters still verify.
func (h *argon2Hasher) Verify(hashed string, plaintext []byte) (bool, error) {
	parts := strings.Split(hashed, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, ErrMalformedHash
	}

	var memory, iterations uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false, ErrMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, ErrMalformedHash
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, ErrMalformedHash
	}

	got := argon2.IDKey(plaintext, salt, iterations, memory, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// BcryptCost represents the bcrypt cost factor.
type BcryptCost int

// Bcrypt cost constants.
const (
	BcryptMinCost     BcryptCost = BcryptCost(bcrypt.MinCost)
	BcryptDefaultCost BcryptCost = BcryptCost(bcrypt.DefaultCost)
	BcryptMaxCost     BcryptCost = BcryptCost(bcrypt.MaxCost)
)

// bcryptHasher implements bcrypt password hashing.
type bcryptHasher struct {
	cost int
}

// Bcrypt returns a bcrypt hasher with default cost.
func Bcrypt() Hasher {
	return BcryptWithCost(BcryptDefaultCost)
}

// BcryptWithCost returns a bcrypt hasher with a specific cost factor.
func BcryptWithCost(cost BcryptCost) Hasher {
	return &bcryptHasher{cost: int(cost)}
}

func (h *bcryptHasher) Hash(plaintext []byte) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(plaintext, h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash failed: %w", err)
	}
	return string(hash), nil
}

func (h *bcryptHasher) Verify(hashed string, plaintext []byte) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), plaintext)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %w", ErrMalformedHash, err)
	}
}

// digestHasher implements deterministic SHA-2 hashing.
// Use for fingerprinting/identification, NOT for passwords.
type digestHasher struct {
	sum func([]byte) []byte
}

// SHA256Hasher returns a SHA-256 hasher.
// The result is a hex-encoded 64-character string.
func SHA256Hasher() Hasher {
	return &digestHasher{sum: func(b []byte) []byte {
		s := sha256.Sum256(b)
		return s[:]
	}}
}

// SHA512Hasher returns a SHA-512 hasher.
// The result is a hex-encoded 128-character string.
func SHA512Hasher() Hasher {
	return &digestHasher{sum: func(b []byte) []byte {
		s := sha512.Sum512(b)
		return s[:]
	}}
}

func (h *digestHasher) Hash(plaintext []byte) (string, error) {
	return hex.EncodeToString(h.sum(plaintext)), nil
}

func (h *digestHasher) Verify(hashed string, plaintext []byte) (bool, error) {
	want, err := hex.DecodeString(hashed)
	if err != nil {
		return false, ErrMalformedHash
	}
	return subtle.ConstantTimeCompare(h.sum(plaintext), want) == 1, nil
}

// builtinHashers returns the default hasher registry.
func builtinHashers() map[HashAlgo]Hasher {
	return map[HashAlgo]Hasher{
		HashArgon2: Argon2(),
		HashBcrypt: Bcrypt(),
		HashSHA256: SHA256Hasher(),
		HashSHA512: SHA512Hasher(),
	}
}
