package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"github.com/google/uuid"
)

// maxTokenAttempts bounds the regenerate-until-unused loops. A collision
// this many times in a row means something other than bad luck.
const maxTokenAttempts = 32

var errTokenExhausted = errors.New("token: no unused value found")

// inUseFunc reports whether a candidate value is already stored.
type inUseFunc func(ctx context.Context, value string) (bool, error)

func unused(ctx context.Context, generate func() (string, error), inUse inUseFunc) (string, error) {
	for range maxTokenAttempts {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		candidate, err := generate()
		if err != nil {
			return "", err
		}
		taken, err := inUse(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", errTokenExhausted
}

// NewSessionToken returns a random UUIDv4 not held by any user.
func NewSessionToken(ctx context.Context, inUse inUseFunc) (string, error) {
	return unused(ctx, func() (string, error) {
		id, err := uuid.NewRandom()
		if err != nil {
			return "", fmt.Errorf("token: %w", err)
		}
		return id.String(), nil
	}, inUse)
}

const (
	codeMin = 100000
	codeMax = 999999
)

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", fmt.Errorf("code: %w", err)
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}

// NewCode returns a six digit code in [100000, 999999] not held by any user.
func NewCode(ctx context.Context, inUse inUseFunc) (string, error) {
	return unused(ctx, randomCode, inUse)
}
