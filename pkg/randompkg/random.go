// Package randompkg provides functionality for generating random applications common items.
package randompkg

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/go-petr/pet-finance/pkg/currencypkg"
	"github.com/go-petr/pet-finance/pkg/moneypkg"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// Intn is a shortcut for generating a random integer between 0 and max using crypto/rand.
func Intn(max int) int64 {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		panic(err)
	}

	return nBig.Int64()
}

// Float64 is a shortcut for generating a random float between 0 and 1 using crypto/rand.
func Float64() float64 {
	return float64(Intn(1<<32)) / (1 << 32)
}

// IntBetween generates a random integer in [min, max].
func IntBetween(min, max int) int {
	return min + int(Intn(max-min+1))
}

// FloatBetween generates a random decimal number between min and max rounded to 2 decimals.
func FloatBetween(min, max float64) float64 {
	numInRange := min + Float64()*(max-min)
	return math.Floor(numInRange*100) / 100
}

// String generates a random string of length n.
func String(n int) string {
	var sb strings.Builder

	k := len(alphabet)

	for i := 0; i < n; i++ {
		c := alphabet[Intn(k)]

		_ = sb.WriteByte(c) // The returned err is always nil.
	}

	return sb.String()
}

// UserID generates a random identity provider user id.
func UserID() string {
	return String(28)
}

// Name generates a random display name.
func Name() string {
	return String(8)
}

// MoneyAmountBetween generates a random positive amount between min and max major units.
func MoneyAmountBetween(min, max int64) moneypkg.Amount {
	minorMin, minorMax := min*100, max*100
	return moneypkg.Amount(minorMin + Intn(int(minorMax-minorMin+1)))
}

// Currency generates a random supported currency code.
func Currency() string {
	currencies := currencypkg.SupportedCurrencies
	return currencies[Intn(len(currencies))]
}

// DayOfMonth generates a random day of month in [1, 28].
func DayOfMonth() int {
	return IntBetween(1, 28)
}

// Email generates a random email.
func Email() string {
	return fmt.Sprintf("%s@email.com", String(10))
}

// Date generates a random UTC date within the last year truncated to seconds.
func Date() time.Time {
	offset := time.Duration(Intn(365*24)) * time.Hour
	return time.Now().UTC().Add(-offset).Truncate(time.Second)
}
