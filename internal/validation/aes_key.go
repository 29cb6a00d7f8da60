package validation

import (
	"encoding/base64"

	validation "github.com/jellydator/validation"
)

// EncodingAESKey validates a WeChat EncodingAESKey: 43 base64 characters that,
// once padded with a trailing "=", decode to a 32-byte AES key.
var EncodingAESKey = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_aes_key_type", "must be a string")
	}
	if s == "" {
		return nil
	}
	if len(s) != 43 {
		return validation.NewError("validation_aes_key_length", "must be exactly 43 characters")
	}
	key, err := base64.StdEncoding.DecodeString(s + "=")
	if err != nil || len(key) != 32 {
		return validation.NewError("validation_aes_key", "must decode to a 32-byte key")
	}
	return nil
})
