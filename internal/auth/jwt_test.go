package auth

import (
	"testing"
)

func TestGenerateAndValidateToken(t *testing.T) {
	InitializeJWT("test-secret")

	token, err := GenerateToken("user-1", "u@example.com", "admin")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("unexpected user id: %s", claims.UserID)
	}
	if claims.Email != "u@example.com" {
		t.Errorf("unexpected email: %s", claims.Email)
	}
	if claims.Role != "admin" {
		t.Errorf("unexpected role: %s", claims.Role)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	InitializeJWT("secret-a")
	token, err := GenerateToken("user-1", "u@example.com", "user")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	InitializeJWT("secret-b")
	if _, err := ValidateToken(token); err == nil {
		t.Error("expected validation to fail with a different secret")
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	InitializeJWT("test-secret")
	if _, err := ValidateToken("not.a.jwt"); err == nil {
		t.Error("expected validation to fail for garbage input")
	}
}

func TestGenerateToken_Uninitialized(t *testing.T) {
	InitializeJWT("")
	defer InitializeJWT("test-secret")

	if _, err := GenerateToken("user-1", "u@example.com", "user"); err == nil {
		t.Error("expected an error without a secret")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if hash == "secret123" {
		t.Error("hash must not equal the plaintext")
	}

	if err := VerifyPassword("secret123", hash); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := VerifyPassword("wrong", hash); err == nil {
		t.Error("wrong password accepted")
	}
}

func TestSessionData_IsAdmin(t *testing.T) {
	if !(&SessionData{Role: "admin"}).IsAdmin() {
		t.Error("admin role should be admin")
	}
	if (&SessionData{Role: "user"}).IsAdmin() {
		t.Error("user role should not be admin")
	}
}
