package decode

import "fmt"

// UnknownServerError reports a game server region code with no configured keyset.
type UnknownServerError struct {
	Region string
}

func (e *UnknownServerError) Error() string {
	return fmt.Sprintf("unknown game server %q: no keyset configured", e.Region)
}

// DecryptionError reports a ciphertext that could not be decrypted,
// either malformed or encrypted under a different key.
type DecryptionError struct {
	Region string
	Err    error
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("decrypting payload for %q: %v", e.Region, e.Err)
}

func (e *DecryptionError) Unwrap() error { return e.Err }

// DeserializationError reports decrypted bytes that are not a valid
// MessagePack document.
type DeserializationError struct {
	Err error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("deserializing payload: %v", e.Err)
}

func (e *DeserializationError) Unwrap() error { return e.Err }
