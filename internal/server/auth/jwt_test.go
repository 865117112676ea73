package auth

import (
	"testing"
	"time"

	"github.com/dpetrovs/archivegate/internal/common"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")
	operatorID := "operator-123"

	tok, err := GenerateToken(operatorID, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	gotOperatorID, err := GetOperatorIDFromToken(tok, secret)
	if err != nil {
		t.Fatalf("GetOperatorIDFromToken error: %v", err)
	}
	if gotOperatorID != operatorID {
		t.Fatalf("operatorID mismatch: got %q want %q", gotOperatorID, operatorID)
	}
}

func TestGetOperatorIDFromToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	operatorID := "op1"

	tok, err := GenerateToken(operatorID, secret, -1*time.Second)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = GetOperatorIDFromToken(tok, secret)
	if err == nil {
		t.Fatalf("expected error for expired token, got nil")
	}
	if err != common.ErrTokenExpired {
		t.Fatalf("expected common.ErrTokenExpired, got %v", err)
	}
}

func TestGetOperatorIDFromToken_WrongSecret(t *testing.T) {
	t.Parallel()

	operatorID := "op2"
	tok, err := GenerateToken(operatorID, []byte("right-secret"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = GetOperatorIDFromToken(tok, []byte("wrong-secret"))
	if err == nil {
		t.Fatalf("expected error for invalid signature, got nil")
	}
}

func TestGetOperatorIDFromToken_MalformedString(t *testing.T) {
	t.Parallel()

	_, err := GetOperatorIDFromToken("not.a.jwt", []byte("k"))
	if err == nil {
		t.Fatalf("expected error for malformed token, got nil")
	}
}
