package prism

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
)

func fastArgon2() Hasher {
	return Argon2WithParams(Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 16, SaltLen: 8})
}

func TestArgon2_Hash(t *testing.T) {
	hash, err := fastArgon2().Hash([]byte("password123"))
	if err != nil {
		t.Fatalf("Hash() error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Errorf("Hash() = %q, unexpected encoding", hash)
	}
}

func TestArgon2_DifferentSalts(t *testing.T) {
	h := fastArgon2()

	hash1, _ := h.Hash([]byte("password123"))
	hash2, _ := h.Hash([]byte("password123"))
	if hash1 == hash2 {
		t.Error("same plaintext should produce different hashes (random salt)")
	}
}

func TestArgon2_Verify(t *testing.T) {
	h := fastArgon2()
	hash, err := h.Hash([]byte("password123"))
	if err != nil {
		t.Fatal(err)
	}

	if ok, err := h.Verify(hash, []byte("password123")); err != nil || !ok {
		t.Errorf("Verify(correct) = %v, %v", ok, err)
	}
	if ok, err := h.Verify(hash, []byte("wrong")); err != nil || ok {
		t.Errorf("Verify(wrong) = %v, %v", ok, err)
	}

	// Parameters travel with the hash.
	if ok, _ := Argon2().Verify(hash, []byte("password123")); !ok {
		t.Error("hash should verify under different default parameters")
	}
}

func TestArgon2_VerifyMalformed(t *testing.T) {
	h := fastArgon2()
	inputs := []string{
		"",
		"plain",
		"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=1$m=1,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1,t=1,p=1$!!!$aGFzaA",
	}

	for _, in := range inputs {
		if _, err := h.Verify(in, []byte("x")); !errors.Is(err, ErrMalformedHash) {
			t.Errorf("Verify(%q) error = %v, want ErrMalformedHash", in, err)
		}
	}
}

func TestBcrypt_HashAndVerify(t *testing.T) {
	h := BcryptWithCost(BcryptMinCost)
	hash, err := h.Hash([]byte("password123"))
	if err != nil {
		t.Fatalf("Hash() error: %v", err)
	}
	if !strings.HasPrefix(hash, "$2a$") {
		t.Errorf("Hash() = %q, want $2a$ prefix", hash)
	}

	if ok, err := h.Verify(hash, []byte("password123")); err != nil || !ok {
		t.Errorf("Verify(correct) = %v, %v", ok, err)
	}
	if ok, err := h.Verify(hash, []byte("wrong")); err != nil || ok {
		t.Errorf("Verify(wrong) = %v, %v", ok, err)
	}
	if _, err := h.Verify("not-bcrypt", []byte("x")); !errors.Is(err, ErrMalformedHash) {
		t.Errorf("Verify(malformed) error = %v, want ErrMalformedHash", err)
	}
}

func TestSHA256Hasher(t *testing.T) {
	h := SHA256Hasher()

	hash, err := h.Hash([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	sum := sha256.Sum256([]byte("secret"))
	if hash != hex.EncodeToString(sum[:]) {
		t.Errorf("Hash() = %q", hash)
	}

	again, _ := h.Hash([]byte("secret"))
	if again != hash {
		t.Error("SHA-256 should be deterministic")
	}

	if ok, _ := h.Verify(hash, []byte("secret")); !ok {
		t.Error("Verify(correct) = false")
	}
	if ok, _ := h.Verify(hash, []byte("other")); ok {
		t.Error("Verify(wrong) = true")
	}
	if _, err := h.Verify("zz", []byte("secret")); !errors.Is(err, ErrMalformedHash) {
		t.Errorf("Verify(non-hex) error = %v", err)
	}
}

func TestSHA512Hasher(t *testing.T) {
	hash, err := SHA512Hasher().Hash([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	if len(hash) != 128 {
		t.Errorf("len(Hash()) = %d, want 128", len(hash))
	}
}
