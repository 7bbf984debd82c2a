package directory

// EncryptAlgo represents a supported column encryption algorithm.
// Use these constants in struct tags: `store.encrypt:"aes"`
type EncryptAlgo string

const (
	// EncryptAES uses AES-256-GCM through package fieldcrypt.
	EncryptAES EncryptAlgo = "aes"
)

// validEncryptAlgos contains all valid encryption algorithms for tag validation.
var validEncryptAlgos = map[EncryptAlgo]bool{
	EncryptAES: true,
}

// validMaskTypes contains all valid mask types for tag validation.
var validMaskTypes = map[MaskType]bool{
	MaskPhone: true,
	MaskEmail: true,
	MaskName:  true,
}

// IsValidEncryptAlgo returns true if the algorithm is a known encryption algorithm.
func IsValidEncryptAlgo(algo EncryptAlgo) bool {
	return validEncryptAlgos[algo]
}

// IsValidMaskType returns true if the type is a known mask type.
func IsValidMaskType(mt MaskType) bool {
	return validMaskTypes[mt]
}
