package verification

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

// CodeGenerator produces one-time code values.
type CodeGenerator interface {
	Generate() (string, error)
}

const (
	codeMin = 100000
	codeMax = 999999
)

// RandomCodeGenerator draws codes uniformly from [100000, 999999] using a
// cryptographically secure source.
type RandomCodeGenerator struct {
	reader io.Reader
}

// NewRandomCodeGenerator creates a generator reading from crypto/rand.
func NewRandomCodeGenerator() *RandomCodeGenerator {
	return &RandomCodeGenerator{reader: rand.Reader}
}

var codeSpan = big.NewInt(codeMax - codeMin + 1)

// Generate implements CodeGenerator.
func (g *RandomCodeGenerator) Generate() (string, error) {
	n, err := rand.Int(g.reader, codeSpan)
	if err != nil {
		return "", fmt.Errorf("failed to read random source: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}
