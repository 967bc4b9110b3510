package qrpass

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"

	"github.com/skip2/go-qrcode"
)

// Pass kinds embedded in the encrypted payload.
const (
	KindPurchase = "purchase"
	KindRsvp     = "rsvp"
)

// PassPayload is what the gate scanner gets back from a decoded QR pass.
type PassPayload struct {
	Kind    string `json:"kind"`
	ID      string `json:"id"` // purchase_id or document_number
	EventID string `json:"event_id"`
}

type Generator struct {
	secret []byte
}

func NewGenerator(secret string) *Generator {
	hashed := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	return &Generator{secret: hashed[:]}
}

// GeneratePass renders the encrypted payload as a QR PNG.
func (g *Generator) GeneratePass(payload PassPayload) ([]byte, error) {
	encrypted, err := g.EncryptPayload(payload)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(encrypted, qrcode.Medium, 256)
}

func (g *Generator) EncryptPayload(payload PassPayload) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(g.secret)
	if err != nil {
		return "", err
	}

	ciphertext := make([]byte, aes.BlockSize+len(data))
	iv := ciphertext[:aes.BlockSize]
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	stream := cipher.NewCFBEncrypter(block, iv)
	stream.XORKeyStream(ciphertext[aes.BlockSize:], data)

	return base64.URLEncoding.EncodeToString(ciphertext), nil
}

// DecryptPayload reverses EncryptPayload; the gate scanner feeds it the raw
// string read off a guest's QR code.
func (g *Generator) DecryptPayload(encrypted string) (*PassPayload, error) {
	ciphertext, err := base64.URLEncoding.DecodeString(encrypted)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < aes.BlockSize {
		return nil, errors.New("pass payload too short")
	}

	block, err := aes.NewCipher(g.secret)
	if err != nil {
		return nil, err
	}

	iv := ciphertext[:aes.BlockSize]
	data := make([]byte, len(ciphertext)-aes.BlockSize)
	stream := cipher.NewCFBDecrypter(block, iv)
	stream.XORKeyStream(data, ciphertext[aes.BlockSize:])

	var payload PassPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, errors.New("pass payload is not valid")
	}
	return &payload, nil
}
