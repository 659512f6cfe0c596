package cryptox

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "s3cret" {
		t.Fatalf("hash equals plaintext")
	}

	ok, err := CheckPassword("s3cret", hash)
	if err != nil {
		t.Fatalf("CheckPassword error: %v", err)
	}
	if !ok {
		t.Fatalf("expected password to match")
	}
}

func TestCheckPassword_Mismatch(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	ok, err := CheckPassword("wrong", hash)
	if err != nil {
		t.Fatalf("CheckPassword error: %v", err)
	}
	if ok {
		t.Fatalf("wrong password accepted")
	}
}

func TestCheckPassword_MalformedDigest(t *testing.T) {
	t.Parallel()

	_, err := CheckPassword("s3cret", "not-a-bcrypt-digest")
	if err == nil {
		t.Fatalf("expected error for malformed digest")
	}
}

func TestHashPassword_SaltedHashesDiffer(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("same")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	h2, err := HashPassword("same")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if h1 == h2 {
		t.Fatalf("two hashes of the same password are identical")
	}
}
