package models

import "testing"

func TestUserPasswordRoundTrip(t *testing.T) {
	user := User{Password: "s3cret-pass"}

	if err := user.HashPassword(); err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if user.PasswordHash == "" {
		t.Fatal("PasswordHash not set")
	}
	if user.PasswordHash == user.Password {
		t.Fatal("password stored unhashed")
	}

	if err := user.CheckPassword("s3cret-pass"); err != nil {
		t.Errorf("CheckPassword with correct password: %v", err)
	}
	if err := user.CheckPassword("wrong-pass"); err == nil {
		t.Error("CheckPassword accepted a wrong password")
	}
}

func TestHashPasswordEmptyIsNoop(t *testing.T) {
	user := User{}
	if err := user.HashPassword(); err != nil {
		t.Fatalf("HashPassword on empty password: %v", err)
	}
	if user.PasswordHash != "" {
		t.Errorf("empty password produced hash %q", user.PasswordHash)
	}
}
