package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testUser() models.User {
	return models.User{
		ID:    primitive.NewObjectID(),
		Name:  "Alice",
		Email: "alice@example.com",
	}
}

func TestIssueAndVerify(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	u := testUser()

	raw, err := tokens.Issue(u)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	id, err := tokens.Verify(raw)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if id.UserID != u.ID {
		t.Errorf("UserID: got %s, want %s", id.UserID.Hex(), u.ID.Hex())
	}
	if id.Name != u.Name {
		t.Errorf("Name: got %q, want %q", id.Name, u.Name)
	}
	if id.Email != u.Email {
		t.Errorf("Email: got %q, want %q", id.Email, u.Email)
	}
}

func TestVerify_Expired(t *testing.T) {
	tokens := NewTokens("test-secret", -time.Minute)
	raw, err := tokens.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := tokens.Verify(raw); err == nil {
		t.Error("expected expired token to fail verification")
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	raw, err := NewTokens("secret-a", time.Hour).Issue(testUser())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := NewTokens("secret-b", time.Hour).Verify(raw); err == nil {
		t.Error("expected token signed with another secret to fail")
	}
}

func TestVerify_Garbage(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	if _, err := tokens.Verify("not-a-token"); err == nil {
		t.Error("expected garbage token to fail verification")
	}
}

func TestRequireAuth(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	u := testUser()
	raw, err := tokens.Issue(u)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	var got *Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = CurrentIdentity(r)
	})

	req := httptest.NewRequest("GET", "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()

	tokens.RequireAuth(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if got == nil {
		t.Fatal("identity was not injected into context")
	}
	if got.UserID != u.ID {
		t.Errorf("UserID: got %s, want %s", got.UserID.Hex(), u.ID.Hex())
	}
}

func TestRequireAuth_MissingToken(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	})

	req := httptest.NewRequest("GET", "/api/users", nil)
	rec := httptest.NewRecorder()

	tokens.RequireAuth(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuth_BadToken(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	})

	req := httptest.NewRequest("GET", "/api/users", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec := httptest.NewRecorder()

	tokens.RequireAuth(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("pw1")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "pw1" {
		t.Error("hash must not equal the plaintext")
	}
	if !CheckPassword(hash, "pw1") {
		t.Error("correct password should verify")
	}
	if CheckPassword(hash, "pw2") {
		t.Error("wrong password should not verify")
	}
}
