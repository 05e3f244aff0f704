package auth

import (
	"testing"
)

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken("test-secret", 42, "alice", true)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ValidateToken("test-secret", token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "alice" || !claims.IsAdmin {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.ID == "" {
		t.Error("token has no JTI")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("test-secret", 42, "alice", false)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := ValidateToken("other-secret", token); err == nil {
		t.Error("token validated with wrong secret")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	if _, err := ValidateToken("test-secret", "not.a.token"); err == nil {
		t.Error("garbage token validated")
	}
}

func TestTokensHaveUniqueJTI(t *testing.T) {
	t1, err := GenerateToken("test-secret", 1, "alice", false)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	t2, err := GenerateToken("test-secret", 1, "alice", false)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	c1, _ := ValidateToken("test-secret", t1)
	c2, _ := ValidateToken("test-secret", t2)
	if c1.ID == c2.ID {
		t.Error("two tokens share a JTI")
	}
}
