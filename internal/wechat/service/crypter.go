package service

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/binary"
	"io"

	apperrors "github.com/allisson/byoc-relay/internal/errors"
	wechatDomain "github.com/allisson/byoc-relay/internal/wechat/domain"
)

const (
	// encodingAESKeyLength is the length of the EncodingAESKey configured in the
	// WeChat console: 43 base64 characters without the trailing '='.
	encodingAESKeyLength = 43

	// pkcs7BlockSize is the padding block used by WeChat safe mode. It is twice
	// the AES block size.
	pkcs7BlockSize = 32

	randomPrefixLength = 16
	lengthFieldSize    = 4
)

// aesCBCCrypter implements MessageCrypter for WeChat safe mode.
//
// Plaintext layout before padding:
//
//	random(16) | uint32 big-endian len(msg) | msg | appid
//
// The AES-256 key is the decoded EncodingAESKey and the IV is its first 16 bytes.
type aesCBCCrypter struct {
	key    []byte
	iv     []byte
	appID  string
	random io.Reader
}

// Decrypt reverses Encrypt and checks that the trailing appid is ours.
func (c *aesCBCCrypter) Decrypt(encrypted string) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return nil, apperrors.Wrap(wechatDomain.ErrDecryptionFailed, "invalid base64")
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, apperrors.Wrap(wechatDomain.ErrDecryptionFailed, "ciphertext is not a whole number of blocks")
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, apperrors.Wrap(wechatDomain.ErrDecryptionFailed, err.Error())
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, c.iv).CryptBlocks(plaintext, ciphertext)

	plaintext, err = pkcs7Unpad(plaintext)
	if err != nil {
		return nil, err
	}

	if len(plaintext) < randomPrefixLength+lengthFieldSize {
		return nil, apperrors.Wrap(wechatDomain.ErrDecryptionFailed, "plaintext too short")
	}
	content := plaintext[randomPrefixLength:]

	msgLen := binary.BigEndian.Uint32(content[:lengthFieldSize])
	content = content[lengthFieldSize:]
	if uint64(msgLen) > uint64(len(content)) {
		return nil, apperrors.Wrap(wechatDomain.ErrDecryptionFailed, "message length out of range")
	}

	msg := content[:msgLen]
	appID := content[msgLen:]
	if subtle.ConstantTimeCompare(appID, []byte(c.appID)) != 1 {
		return nil, apperrors.Wrap(wechatDomain.ErrDecryptionFailed, "appid mismatch")
	}

	return msg, nil
}

// Encrypt builds the safe-mode ciphertext for plaintext.
func (c *aesCBCCrypter) Encrypt(plaintext []byte) (string, error) {
	buf := make([]byte, randomPrefixLength+lengthFieldSize, randomPrefixLength+lengthFieldSize+len(plaintext)+len(c.appID))
	if _, err := io.ReadFull(c.random, buf[:randomPrefixLength]); err != nil {
		return "", err
	}
	binary.BigEndian.PutUint32(buf[randomPrefixLength:], uint32(len(plaintext))) //nolint:gosec // bounded by body limit
	buf = append(buf, plaintext...)
	buf = append(buf, c.appID...)
	buf = pkcs7Pad(buf)

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}

	ciphertext := make([]byte, len(buf))
	cipher.NewCBCEncrypter(block, c.iv).CryptBlocks(ciphertext, buf)

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func pkcs7Pad(data []byte) []byte {
	padding := pkcs7BlockSize - len(data)%pkcs7BlockSize
	return append(data, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	padding := int(data[len(data)-1])
	if padding < 1 || padding > pkcs7BlockSize || padding > len(data) {
		return nil, apperrors.Wrap(wechatDomain.ErrDecryptionFailed, "invalid padding")
	}
	return data[:len(data)-padding], nil
}

// DecodeEncodingAESKey turns the 43-character console value into the 32-byte AES key.
func DecodeEncodingAESKey(encodingAESKey string) ([]byte, error) {
	if len(encodingAESKey) != encodingAESKeyLength {
		return nil, wechatDomain.ErrInvalidEncodingAESKey
	}

	key, err := base64.StdEncoding.DecodeString(encodingAESKey + "=")
	if err != nil || len(key) != 32 {
		return nil, wechatDomain.ErrInvalidEncodingAESKey
	}
	return key, nil
}

// NewMessageCrypter creates a MessageCrypter for the given EncodingAESKey and appid.
func NewMessageCrypter(encodingAESKey, appID string) (MessageCrypter, error) {
	key, err := DecodeEncodingAESKey(encodingAESKey)
	if err != nil {
		return nil, err
	}

	return &aesCBCCrypter{
		key:    key,
		iv:     key[:aes.BlockSize],
		appID:  appID,
		random: rand.Reader,
	}, nil
}
