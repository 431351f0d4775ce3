package security

import (
	"testing"
	"time"
)

func TestGenerateVerifyRoundTrip(t *testing.T) {
	opts := DefaultOptions([]byte("test-secret"))
	token, exp, err := Generate(opts, "game-server-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatalf("token already expired: %s", exp)
	}
	appID, err := Verify(opts, token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if appID != "game-server-1" {
		t.Fatalf("subject wrong: %q", appID)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	token, _, err := Generate(DefaultOptions([]byte("secret-a")), "app")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := Verify(DefaultOptions([]byte("secret-b")), token); err == nil {
		t.Fatalf("wrong secret should fail verification")
	}
}

func TestVerifyGarbage(t *testing.T) {
	if _, err := Verify(DefaultOptions([]byte("s")), "not.a.token"); err == nil {
		t.Fatalf("garbage token should fail")
	}
}

func TestUnsupportedAlg(t *testing.T) {
	opts := Options{Secret: []byte("s"), Alg: "RS256"}
	if _, _, err := Generate(opts, "app"); err == nil {
		t.Fatalf("asymmetric alg should be rejected")
	}
}
