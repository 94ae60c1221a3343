package anthropic

import "crypto/rand"

const idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const idLength = 24

// RandomToken returns n characters from the URL-safe alphanumeric alphabet.
func RandomToken(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic("anthropic: crypto/rand unavailable: " + err.Error())
	}
	for i, b := range buf {
		buf[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return string(buf)
}

// NewMessageID returns a fresh request/message identifier.
func NewMessageID() string {
	return "msg_" + RandomToken(idLength)
}
