package helpers

import "testing"

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "secret123" {
		t.Fatal("hash must not equal the plain password")
	}
	if !CompareHashAndPassword(hash, "secret123") {
		t.Error("expected match")
	}
	if CompareHashAndPassword(hash, "secret124") {
		t.Error("expected mismatch")
	}

	again, _ := HashPassword("secret123")
	if again == hash {
		t.Error("expected salted hashes to differ")
	}
}

func TestHashPassword_TooLong(t *testing.T) {
	long := make([]byte, 73)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := HashPassword(string(long)); err != ErrPasswordTooLong {
		t.Errorf("err = %v, want ErrPasswordTooLong", err)
	}
}

func TestCompareHashAndPassword_MalformedHash(t *testing.T) {
	if CompareHashAndPassword("not-a-hash", "x") {
		t.Error("malformed hash must not match")
	}
}
