package service

import (
	"crypto/rand"
	"math/big"
	"strings"

	"atrium/internal/upstream"
	dErrors "atrium/pkg/domain-errors"
)

const (
	lowercaseChars = "abcdefghijklmnopqrstuvwxyz"
	uppercaseChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars     = "0123456789"
	specialChars   = "!#$%&()*+,-./:;<=>?@[]^_{|}~"

	// defaultPasswordLength applies when the policy's minimum is lower.
	defaultPasswordLength = 12

	maxGenerateAttempts = 16
)

// GeneratePassword synthesizes a password satisfying the policy's minimum
// length and per-class minimums. It generates, it does not validate user
// input; the invariant is that the output always re-validates clean against
// the policy it was generated from.
func GeneratePassword(policy upstream.PasswordPolicy) (string, error) {
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		password, err := generateCandidate(policy)
		if err != nil {
			return "", err
		}
		// The unique-character minimum is probabilistic under random
		// selection; regenerate on the rare miss.
		if ValidatePassword(policy, password) == nil {
			return password, nil
		}
	}
	return "", dErrors.New(dErrors.CodeInternal, "could not satisfy password policy")
}

func generateCandidate(policy upstream.PasswordPolicy) (string, error) {
	length := policy.MinLength
	if length < defaultPasswordLength {
		length = defaultPasswordLength
	}
	required := policy.MinLowercase + policy.MinUppercase + policy.MinDigits + policy.MinSpecial
	if length < required {
		length = required
	}

	chars := make([]byte, 0, length)
	appendRandom := func(set string, count int) error {
		for i := 0; i < count; i++ {
			c, err := randomChar(set)
			if err != nil {
				return err
			}
			chars = append(chars, c)
		}
		return nil
	}

	if err := appendRandom(lowercaseChars, policy.MinLowercase); err != nil {
		return "", err
	}
	if err := appendRandom(uppercaseChars, policy.MinUppercase); err != nil {
		return "", err
	}
	if err := appendRandom(digitChars, policy.MinDigits); err != nil {
		return "", err
	}
	if err := appendRandom(specialChars, policy.MinSpecial); err != nil {
		return "", err
	}
	if err := appendRandom(lowercaseChars+uppercaseChars+digitChars+specialChars, length-len(chars)); err != nil {
		return "", err
	}

	if err := shuffle(chars); err != nil {
		return "", err
	}
	return string(chars), nil
}

func randomChar(set string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "could not read random source")
	}
	return set[n.Int64()], nil
}

func shuffle(chars []byte) error {
	for i := len(chars) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "could not read random source")
		}
		j := n.Int64()
		chars[i], chars[j] = chars[j], chars[i]
	}
	return nil
}

// ValidatePassword checks a password against the policy the generator uses.
// It exists so the generator's output can be verified with the exact same
// predicate the policy describes.
func ValidatePassword(policy upstream.PasswordPolicy, password string) error {
	if len(password) < policy.MinLength {
		return dErrors.New(dErrors.CodeValidation, "password is too short")
	}
	if countAny(password, lowercaseChars) < policy.MinLowercase {
		return dErrors.New(dErrors.CodeValidation, "password needs more lowercase letters")
	}
	if countAny(password, uppercaseChars) < policy.MinUppercase {
		return dErrors.New(dErrors.CodeValidation, "password needs more uppercase letters")
	}
	if countAny(password, digitChars) < policy.MinDigits {
		return dErrors.New(dErrors.CodeValidation, "password needs more digits")
	}
	if countAny(password, specialChars) < policy.MinSpecial {
		return dErrors.New(dErrors.CodeValidation, "password needs more special characters")
	}
	if uniqueChars(password) < policy.MinUniqueChars {
		return dErrors.New(dErrors.CodeValidation, "password needs more unique characters")
	}
	return nil
}

func countAny(s, set string) int {
	count := 0
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(set, s[i]) >= 0 {
			count++
		}
	}
	return count
}

func uniqueChars(s string) int {
	seen := make(map[byte]struct{}, len(s))
	for i := 0; i < len(s); i++ {
		seen[s[i]] = struct{}{}
	}
	return len(seen)
}
