package service

import (
	"math/rand"
	"sync"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	upperChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerChars  = "abcdefghijklmnopqrstuvwxyz"
	digitChars  = "0123456789"
	symbolChars = "!@#$%^&*()_+-=[]{}|;:,.<>?"

	generatedPasswordLength = 12
	minStrongPasswordLength = 8
)

// Intn is the random source used by PasswordGenerator.
type Intn interface {
	Intn(n int) int
}

// PasswordGenerator produces strong random passwords from an injected source.
type PasswordGenerator struct {
	mu  sync.Mutex
	rnd Intn
}

// NewPasswordGenerator builds a generator. A zero seed uses the current time.
func NewPasswordGenerator(seed int64) *PasswordGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return NewPasswordGeneratorWithSource(rand.New(rand.NewSource(seed)))
}

// NewPasswordGeneratorWithSource builds a generator over rnd.
func NewPasswordGeneratorWithSource(rnd Intn) *PasswordGenerator {
	return &PasswordGenerator{rnd: rnd}
}

// Generate returns a 12 character password containing every character class.
func (g *PasswordGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	all := upperChars + lowerChars + digitChars + symbolChars
	password := make([]byte, 0, generatedPasswordLength)
	for _, set := range []string{upperChars, lowerChars, digitChars, symbolChars} {
		password = append(password, set[g.rnd.Intn(len(set))])
	}
	for len(password) < generatedPasswordLength {
		password = append(password, all[g.rnd.Intn(len(all))])
	}
	for i := len(password) - 1; i > 0; i-- {
		j := g.rnd.Intn(i + 1)
		password[i], password[j] = password[j], password[i]
	}
	return string(password)
}

// IsStrongPassword reports whether p has at least 8 characters and one of each class.
func IsStrongPassword(p string) bool {
	if len(p) < minStrongPasswordLength {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r) && !unicode.IsSpace(r):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

// BcryptHasher hashes and verifies passwords with bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher using cost, falling back to bcrypt.DefaultCost when out of range.
func NewBcryptHasher(cost int) BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return BcryptHasher{cost: cost}
}

// Hash returns the bcrypt hash of password.
func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches hash.
func (h BcryptHasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
