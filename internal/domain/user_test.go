package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewUser(t *testing.T) {
	user, err := NewUser("alice", "$2a$10$hash")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if user.Username != "alice" {
		t.Errorf("Expected username %s, got %s", "alice", user.Username)
	}

	if user.ID != "" {
		t.Errorf("Expected empty ID before storage, got %s", user.ID)
	}

	if user.CreatedAt.IsZero() {
		t.Error("Expected non-zero CreatedAt time")
	}

	_, err = NewUser("", "$2a$10$hash")
	if err != ErrEmptyUsername {
		t.Errorf("Expected error %v, got %v", ErrEmptyUsername, err)
	}

	_, err = NewUser("alice", "")
	if err != ErrEmptyHashedPassword {
		t.Errorf("Expected error %v, got %v", ErrEmptyHashedPassword, err)
	}
}

func TestUserJSONOmitsPasswordHash(t *testing.T) {
	user := User{ID: "u1", Username: "alice", HashedPassword: "$2a$10$secret"}

	data, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if strings.Contains(string(data), "secret") {
		t.Errorf("Expected password hash to be omitted, got %s", data)
	}
}
