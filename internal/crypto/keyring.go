package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// pbkdf2Iterations is fixed; changing it invalidates every passphrase-derived key.
const pbkdf2Iterations = 10000

// KeySpec is the raw key material for one game server region, as configured.
// Either KeyHex (with optional IVHex) or Passphrase+Salt must be set.
type KeySpec struct {
	KeyHex     string
	IVHex      string
	Passphrase string
	Salt       string
}

// Keyset holds a ready AES-128-CBC key/IV pair for one region.
type Keyset struct {
	key []byte
	iv  []byte
}

// Keyring resolves a game server region code to its Keyset.
type Keyring struct {
	sets map[string]Keyset
}

// NewKeyring builds a Keyring from configured key specs.
// Passphrase entries are expanded with PBKDF2-SHA256 into key and,
// when no explicit IV is given, IV as well.
func NewKeyring(specs map[string]KeySpec) (*Keyring, error) {
	sets := make(map[string]Keyset, len(specs))
	for region, spec := range specs {
		ks, err := newKeyset(spec)
		if err != nil {
			return nil, fmt.Errorf("keyset %q: %w", region, err)
		}
		sets[region] = ks
	}
	return &Keyring{sets: sets}, nil
}

func newKeyset(spec KeySpec) (Keyset, error) {
	var ks Keyset

	switch {
	case spec.KeyHex != "":
		key, err := hex.DecodeString(spec.KeyHex)
		if err != nil {
			return ks, fmt.Errorf("decoding key_hex: %w", err)
		}
		if len(key) != 16 && len(key) != 24 && len(key) != 32 {
			return ks, fmt.Errorf("key must be 16, 24 or 32 bytes, got %d", len(key))
		}
		ks.key = key
	case spec.Passphrase != "":
		if spec.Salt == "" {
			return ks, fmt.Errorf("passphrase keyset requires a salt")
		}
		derived := pbkdf2.Key([]byte(spec.Passphrase), []byte(spec.Salt), pbkdf2Iterations, 32, sha256.New)
		ks.key = derived[:16]
		ks.iv = derived[16:32]
	default:
		return ks, fmt.Errorf("keyset needs key_hex or passphrase")
	}

	if spec.IVHex != "" {
		iv, err := hex.DecodeString(spec.IVHex)
		if err != nil {
			return ks, fmt.Errorf("decoding iv_hex: %w", err)
		}
		if len(iv) != aes.BlockSize {
			return ks, fmt.Errorf("iv must be %d bytes, got %d", aes.BlockSize, len(iv))
		}
		ks.iv = iv
	}
	if ks.iv == nil {
		return ks, fmt.Errorf("keyset needs iv_hex or a passphrase-derived iv")
	}
	return ks, nil
}

// Lookup returns the Keyset for a region code.
func (r *Keyring) Lookup(region string) (Keyset, bool) {
	ks, ok := r.sets[region]
	return ks, ok
}

// Regions returns the number of configured regions.
func (r *Keyring) Regions() int {
	return len(r.sets)
}

// Decrypt decrypts an AES-CBC ciphertext and strips PKCS#7 padding.
func (k Keyset) Decrypt(data []byte) ([]byte, error) {
	block, err := aes.NewCipher(k.key)
	if err != nil {
		return nil, fmt.Errorf("initializing cipher: %w", err)
	}
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("ciphertext length %d is not a multiple of the block size", len(data))
	}

	plain := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, k.iv).CryptBlocks(plain, data)

	return pkcs7Unpad(plain, aes.BlockSize)
}

// Encrypt is the inverse of Decrypt. It exists for building test payloads
// and replay captures, not for talking to the game API.
func (k Keyset) Encrypt(data []byte) ([]byte, error) {
	block, err := aes.NewCipher(k.key)
	if err != nil {
		return nil, fmt.Errorf("initializing cipher: %w", err)
	}

	padded := pkcs7Pad(data, aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, k.iv).CryptBlocks(out, padded)
	return out, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty plaintext")
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, fmt.Errorf("invalid padding byte %d", n)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("inconsistent padding")
		}
	}
	return data[:len(data)-n], nil
}
