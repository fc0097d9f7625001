package auth

import (
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestInspectToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	info, err := InspectToken(sign(t, jwt.MapClaims{"sub": "alice@example.com", "role": "ADMIN", "exp": exp}))
	if err != nil {
		t.Fatal(err)
	}
	if info.Subject != "alice@example.com" || info.Role != "ADMIN" || info.ExpiresAt.Unix() != exp {
		t.Fatalf("info = %+v", info)
	}
	if info.Expired(time.Now()) {
		t.Fatal("fresh token reported expired")
	}
	if !info.Expired(time.Now().Add(2 * time.Hour)) {
		t.Fatal("token not expired two hours later")
	}
}

func TestInspectTokenRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "opaque-token", "a.b.c"} {
		if _, err := InspectToken(raw); err == nil {
			t.Errorf("InspectToken(%q) succeeded", raw)
		}
	}
	if _, err := InspectToken(sign(t, jwt.MapClaims{"foo": "bar"})); err == nil {
		t.Error("claims without subject or expiry accepted")
	}
}
