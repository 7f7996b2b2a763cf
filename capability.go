package prism

// HashAlgo represents a supported hashing algorithm.
// Use these constants in struct tags: `receive.hash:"argon2"`
type HashAlgo string

const (
	// HashArgon2 uses Argon2id for password hashing (salted, slow).
	HashArgon2 HashAlgo = "argon2"

	// HashBcrypt uses bcrypt for password hashing (salted, slow).
	HashBcrypt HashAlgo = "bcrypt"

	// HashSHA256 uses SHA-256 for deterministic hashing (fast, no salt).
	// Use for fingerprinting/identification, NOT for passwords.
	HashSHA256 HashAlgo = "sha256"

	// HashSHA512 uses SHA-512 for deterministic hashing (fast, no salt).
	// Use for fingerprinting/identification, NOT for passwords.
	HashSHA512 HashAlgo = "sha512"
)

// validHashAlgos contains all valid hash algorithms for tag validation.
var validHashAlgos = map[HashAlgo]bool{
	HashArgon2: true,
	HashBcrypt: true,
	HashSHA256: true,
	HashSHA512: true,
}

// validMaskKinds contains all valid mask kinds for tag validation.
var validMaskKinds = map[MaskKind]bool{
	MaskName:     true,
	MaskPhone:    true,
	MaskIDCard:   true,
	MaskBankCard: true,
	MaskEmail:    true,
	MaskAddress:  true,
	MaskCarPlate: true,
	MaskIP:       true,
	MaskUUID:     true,
	MaskPassword: true,
	MaskCustom:   true,
	MaskFull:     true,
}

// IsValidHashAlgo returns true if the algorithm is a known hash algorithm.
func IsValidHashAlgo(algo HashAlgo) bool {
	return validHashAlgos[algo]
}

// IsValidMaskKind returns true if the kind is a known mask kind.
func IsValidMaskKind(kind MaskKind) bool {
	return validMaskKinds[kind]
}
