// Package keygen 生成不透明的许可证密钥。
//
// 密钥由 32 字节随机明文经 AES-256-CBC 加密得到,格式为
// "hex(iv):hex(ciphertext)",始终含分隔符,可与任何展示用
// 格式区分。密文不带完整性标签:被篡改的 token 只是换成另一个
// 不透明字符串,在后续查库时因为匹配不到任何记录而被拒绝。
package keygen

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"

	"golang.org/x/crypto/scrypt"
)

// Separator 当前格式的分隔符
const Separator = ":"

const (
	secretLength = 32
	ivLength     = 16
)

type Generator struct {
	encryptionKey []byte
}

// New 用 scrypt 从服务端口令派生 AES-256 密钥
func New(secret string) (*Generator, error) {
	if secret == "" {
		secret = "default-key"
	}
	key, err := scrypt.Key([]byte(secret), []byte("salt"), 16384, 8, 1, 32)
	if err != nil {
		return nil, err
	}
	return &Generator{encryptionKey: key}, nil
}

// Generate 生成一个新密钥。纯函数,不触碰任何存储;
// 唯一性由 256 位随机明文保证,碰撞概率可以忽略。
func (g *Generator) Generate() (string, error) {
	secret := make([]byte, secretLength)
	if _, err := rand.Read(secret); err != nil {
		return "", err
	}
	plaintext := []byte(hex.EncodeToString(secret))

	iv := make([]byte, ivLength)
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}

	block, err := aes.NewCipher(g.encryptionKey)
	if err != nil {
		return "", err
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(iv) + Separator + hex.EncodeToString(ciphertext), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padding)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padding)
	}
	return padded
}
