// Package otp generates the numeric one-time codes used to confirm
// signup email addresses and authorize password resets.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	// CodeLength is the number of digits in a generated code.
	CodeLength = 6

	// DefaultTTL is how long a code stays redeemable after issuance.
	DefaultTTL = 10 * time.Minute
)

var codeSpace = big.NewInt(1_000_000)

// GenerateCode returns a 6-digit code drawn uniformly from
// 000000 through 999999.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("failed to generate one-time code: %w", err)
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}
