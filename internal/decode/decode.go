// Package decode turns an encrypted game client snapshot into a generic
// in-memory document. It owns the first two pipeline stages: AES decryption
// under a per-region keyset and MessagePack deserialization.
package decode

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/htrskmiku/solabot/internal/crypto"
)

// Decoder decrypts and deserializes raw snapshot payloads.
type Decoder struct {
	keys *crypto.Keyring
}

// NewDecoder creates a Decoder over the given keyring.
func NewDecoder(keys *crypto.Keyring) *Decoder {
	return &Decoder{keys: keys}
}

// Decode resolves the region keyset, decrypts the payload and deserializes
// it as a MessagePack document. The document is returned in memory only;
// Decode never touches storage.
//
// An already-decoded document passes through unchanged, so replay and tests
// can feed parsed data without re-encrypting it.
func (d *Decoder) Decode(input any, region string) (map[string]any, error) {
	switch v := input.(type) {
	case map[string]any:
		return v, nil
	case []byte:
		return d.decodeRaw(v, region)
	default:
		return nil, &DeserializationError{Err: fmt.Errorf("unsupported decoder input type %T", input)}
	}
}

func (d *Decoder) decodeRaw(raw []byte, region string) (map[string]any, error) {
	ks, ok := d.keys.Lookup(region)
	if !ok {
		return nil, &UnknownServerError{Region: region}
	}

	plain, err := ks.Decrypt(raw)
	if err != nil {
		return nil, &DecryptionError{Region: region, Err: err}
	}

	var doc map[string]any
	if err := msgpack.Unmarshal(plain, &doc); err != nil {
		return nil, &DeserializationError{Err: err}
	}
	return doc, nil
}
