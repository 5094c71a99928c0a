package shortener

import (
	"math/rand/v2"

	"github.com/jaevor/go-nanoid"
)

const (
	// CodeLength is the fixed length of every short code.
	CodeLength = 6

	// Alphabet is the set of characters a short code is drawn from.
	Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

// reservedCodes are well-formed codes shadowed by static routes.
var reservedCodes = map[Code]struct{}{
	"health": {},
}

// CodeGenerator generates candidate short codes.
type CodeGenerator func() string

// NewNanoIDGenerator returns a generator drawing CodeLength characters
// uniformly from Alphabet using a cryptographic source.
func NewNanoIDGenerator() (CodeGenerator, error) {
	gen, err := nanoid.CustomASCII(Alphabet, CodeLength)
	if err != nil {
		return nil, err
	}

	return CodeGenerator(gen), nil
}

// NewRandGenerator returns a generator backed by the given source.
// A seeded source makes the sequence of codes reproducible.
func NewRandGenerator(rng *rand.Rand) CodeGenerator {
	return func() string {
		b := make([]byte, CodeLength)
		for i := range b {
			b[i] = Alphabet[rng.IntN(len(Alphabet))]
		}

		return string(b)
	}
}

// Valid reports whether c is exactly CodeLength ASCII letters or digits.
func (c Code) Valid() bool {
	if len(c) != CodeLength {
		return false
	}

	for i := 0; i < len(c); i++ {
		ch := c[i]
		isDigit := ch >= '0' && ch <= '9'
		isUpper := ch >= 'A' && ch <= 'Z'
		isLower := ch >= 'a' && ch <= 'z'

		if !isDigit && !isUpper && !isLower {
			return false
		}
	}

	return true
}

// Reserved reports whether c collides with a static route and must never be issued.
func (c Code) Reserved() bool {
	_, ok := reservedCodes[c]

	return ok
}

// ParseCode validates raw and returns it as a Code.
func ParseCode(raw string) (Code, error) {
	code := Code(raw)
	if !code.Valid() {
		return "", ErrInvalidCode
	}

	return code, nil
}
