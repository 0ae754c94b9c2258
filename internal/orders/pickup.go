package orders

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const pickupCodeDigits = 6

var pickupCodeSpace = big.NewInt(1_000_000)

// newPickupCode returns a zero-padded six digit code shown to the merchant at hand-over.
func newPickupCode() (string, error) {
	n, err := rand.Int(rand.Reader, pickupCodeSpace)
	if err != nil {
		return "", fmt.Errorf("generate pickup code: %w", err)
	}
	return fmt.Sprintf("%0*d", pickupCodeDigits, n.Int64()), nil
}
