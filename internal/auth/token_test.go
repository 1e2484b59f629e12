package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/crucial707/notes-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

func TestService_IssueAndVerify(t *testing.T) {
	svc := NewService([]byte("test-secret"), 0)
	if svc.TTL() != DefaultTTL {
		t.Fatalf("TTL: got %v, want %v", svc.TTL(), DefaultTTL)
	}

	before := time.Now()
	token, expires, err := svc.IssueToken(&models.User{ID: 7, Username: "alice"})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if token == "" {
		t.Fatal("IssueToken returned empty token")
	}
	if d := expires.Sub(before); d < 24*time.Hour-time.Minute || d > 24*time.Hour+time.Minute {
		t.Errorf("expiry %v is not ~24h after issuance", d)
	}

	id, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if id.UserID != 7 || id.Username != "alice" {
		t.Errorf("unexpected identity: %+v", id)
	}
}

func TestService_VerifyToken_Rejects(t *testing.T) {
	svc := NewService([]byte("test-secret"), time.Hour)
	valid, _, err := svc.IssueToken(&models.User{ID: 1, Username: "alice"})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	expiredSvc := NewService([]byte("test-secret"), time.Hour)
	expiredSvc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := expiredSvc.IssueToken(&models.User{ID: 1, Username: "alice"})
	if err != nil {
		t.Fatalf("IssueToken expired: %v", err)
	}

	otherSecret, _, err := NewService([]byte("other-secret"), time.Hour).IssueToken(&models.User{ID: 1, Username: "alice"})
	if err != nil {
		t.Fatalf("IssueToken other: %v", err)
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID:           1,
		Username:         "alice",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: 1, Username: "alice"}).
		SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign no expiry: %v", err)
	}

	noIdentity, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign no identity: %v", err)
	}

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"tampered payload", tampered},
		{"expired", expired},
		{"other secret", otherSecret},
		{"alg none", none},
		{"no expiry", noExpiry},
		{"no identity", noIdentity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.VerifyToken(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("VerifyToken(%s) error = %v, want ErrInvalidToken", tt.name, err)
			}
		})
	}
}

func TestService_TokenCarriesUniqueID(t *testing.T) {
	svc := NewService([]byte("test-secret"), time.Hour)
	user := &models.User{ID: 1, Username: "alice"}

	a, _, _ := svc.IssueToken(user)
	b, _, _ := svc.IssueToken(user)
	if a == b {
		t.Error("two tokens issued in the same second must differ (jti)")
	}
}
