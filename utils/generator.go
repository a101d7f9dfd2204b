package utils

import (
	"crypto/rand"
	"strings"
	"time"
)

const referenceLength = 10
const letterBytes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewReference builds a gateway reference such as DIQ-20261014-7Q2K9X1ZPA.
func NewReference(prefix string) string {
	b := make([]byte, referenceLength)
	_, _ = rand.Read(b)
	for i := range b {
		b[i] = letterBytes[int(b[i])%len(letterBytes)]
	}
	return strings.Join([]string{prefix, time.Now().UTC().Format("20060102"), string(b)}, "-")
}
