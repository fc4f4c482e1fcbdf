package tokenpkg

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/go-petr/pet-finance/pkg/randompkg"
)

func TestNewJWTMakerKeySize(t *testing.T) {
	t.Parallel()

	if _, err := NewJWTMaker(strings.Repeat("k", minSecretKeySize)); err != nil {
		t.Errorf("NewJWTMaker(%d bytes) returned error: %v", minSecretKeySize, err)
	}

	if _, err := NewJWTMaker(strings.Repeat("k", 64)); err != nil {
		t.Errorf("NewJWTMaker(64 bytes) returned error: %v", err)
	}

	maker, err := NewJWTMaker(strings.Repeat("k", minSecretKeySize-1))
	if err == nil || maker != nil {
		t.Errorf("NewJWTMaker(short key) = %v, %v; want nil, error", maker, err)
	}
}

func TestJWTMakerRejectsUnsignedToken(t *testing.T) {
	t.Parallel()

	payload, err := NewPayload(randompkg.UserID(), time.Minute)
	if err != nil {
		t.Fatalf("NewPayload returned error: %v", err)
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, payload).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString returned error: %v", err)
	}

	maker, err := NewJWTMaker(randompkg.String(32))
	if err != nil {
		t.Fatalf("NewJWTMaker returned error: %v", err)
	}

	if _, err := maker.VerifyToken(token); err != ErrInvalidToken {
		t.Errorf("maker.VerifyToken(alg none) returned error %v, want %v", err, ErrInvalidToken)
	}
}
