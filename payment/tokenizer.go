// Package payment wraps the card tokenization collaborator. The service
// only ever handles the returned token and its non-sensitive descriptors;
// raw card numbers and CVVs are never stored or logged.
package payment

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go-ledger-api/model"

	"github.com/google/uuid"
)

var (
	ErrCardDeclined = errors.New("card was declined by the payment provider")
	ErrInvalidCard  = errors.New("card details failed validation")
	ErrUnavailable  = errors.New("payment provider unavailable")
)

// CardToken is the provider's reference to a tokenized card plus the
// descriptors that are safe to persist.
type CardToken struct {
	Token    string `json:"token"`
	Brand    string `json:"brand"`
	LastFour string `json:"last_four"`
}

// Tokenizer is the payment tokenization collaborator.
type Tokenizer interface {
	Tokenize(ctx context.Context, card *model.CardDetails) (*CardToken, error)
}

// SimTokenizer simulates the hosted provider: it validates card input,
// waits a configurable latency and can be made to decline a fraction of
// requests. A caller-supplied context deadline is honored, so a slow
// provider surfaces as a timeout rather than a hang.
type SimTokenizer struct {
	Latency  time.Duration
	FailRate float64
	rng      *rand.Rand
}

func NewSimTokenizer(latency time.Duration, failRate float64) *SimTokenizer {
	return &SimTokenizer{
		Latency:  latency,
		FailRate: failRate,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *SimTokenizer) Tokenize(ctx context.Context, card *model.CardDetails) (*CardToken, error) {
	if err := validateCard(card); err != nil {
		return nil, err
	}

	select {
	case <-time.After(s.Latency):
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
	}

	if s.FailRate > 0 && s.rng.Float64() < s.FailRate {
		return nil, ErrCardDeclined
	}

	number := digitsOnly(card.Number)
	return &CardToken{
		Token:    "tok_" + uuid.NewString(),
		Brand:    detectBrand(number),
		LastFour: number[len(number)-4:],
	}, nil
}

func validateCard(card *model.CardDetails) error {
	if card == nil {
		return fmt.Errorf("%w: card details are required", ErrInvalidCard)
	}
	number := digitsOnly(card.Number)
	if len(number) < 12 || len(number) > 19 || !luhnValid(number) {
		return fmt.Errorf("%w: invalid card number", ErrInvalidCard)
	}
	now := time.Now()
	expiry := time.Date(card.ExpiryYear, time.Month(card.ExpiryMonth)+1, 1, 0, 0, 0, 0, time.UTC)
	if !expiry.After(now) {
		return fmt.Errorf("%w: card is expired", ErrInvalidCard)
	}
	if l := len(card.CVV); l < 3 || l > 4 {
		return fmt.Errorf("%w: invalid security code", ErrInvalidCard)
	}
	return nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func luhnValid(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

func detectBrand(number string) string {
	switch {
	case strings.HasPrefix(number, "4"):
		return "visa"
	case strings.HasPrefix(number, "5"):
		return "mastercard"
	case strings.HasPrefix(number, "3"):
		return "amex"
	default:
		return "unknown"
	}
}
