package sol

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var ErrOffCurve = errors.New("address is not on the ed25519 curve")

// ValidateAddress accepts base58 public keys that a wallet can sign for. Program derived
// addresses are rejected since they never sign swaps.
func ValidateAddress(addr string) error {
	pk, err := solana.PublicKeyFromBase58(addr)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", addr, err)
	}
	if !pk.IsOnCurve() {
		return fmt.Errorf("invalid address %q: %w", addr, ErrOffCurve)
	}
	return nil
}

func IsValidAddress(addr string) bool {
	return ValidateAddress(addr) == nil
}
