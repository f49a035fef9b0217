package promotion

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 8

	maxCodeAttempts = 10
)

// GenerateCode returns a random promo code of uppercase letters and digits.
func GenerateCode() (string, error) {
	buf := make([]byte, codeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", fmt.Errorf("failed to generate promo code: %w", err)
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// GenerateUniqueCode generates a promo code not yet present in the store,
// retrying on collision.
func (e *Engine) GenerateUniqueCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := GenerateCode()
		if err != nil {
			return "", err
		}

		taken, err := e.store.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check promo code: %w", err)
		}
		if !taken {
			return code, nil
		}

		e.logger.Debug().Str("promo_code", code).Msg("promo code collision, retrying")
	}
	return "", fmt.Errorf("failed to generate unique promo code after %d attempts", maxCodeAttempts)
}
