package auth

import "testing"

func TestHashPassword_Deterministic(t *testing.T) {
	if HashPassword("pw1") != HashPassword("pw1") {
		t.Fatalf("hash is not deterministic")
	}
	// Known vector: base64(sha256("pw1"))
	if got := HashPassword("pw1"); got != "xZLfSoaTO5Kt3JhCQC3fGYxjjqm+WJFu5uNzTh4xUvg=" {
		t.Fatalf("unexpected digest: %s", got)
	}
}

func TestHashPassword_Distinct(t *testing.T) {
	inputs := []string{"", "a", "b", "pw1", "pw2", "Pw1", "pw1 ", "bigboss_password", "user1_password", "user2_password"}
	seen := map[string]string{}
	for _, in := range inputs {
		h := HashPassword(in)
		if prev, ok := seen[h]; ok {
			t.Fatalf("collision between %q and %q", prev, in)
		}
		seen[h] = in
	}
}

func TestHashPassword_MatchesSeedData(t *testing.T) {
	seeds := map[string]string{
		"bigboss_password": "Ta0Nj5W1rlW52EWFDXZlxrgbBgLbkBBI9QQnrI5DJBo=",
		"user1_password":   "oxY7FpVEIGOEAhYnE5BDRU3Yx9kmdG9tAaEfqQTZDAM=",
		"user2_password":   "Wr+sTsnzRZ5/p8IkdmFfup8umBJcPTj9qGeZPTBzXNg=",
	}
	for pw, want := range seeds {
		if got := HashPassword(pw); got != want {
			t.Fatalf("HashPassword(%q) = %s, want %s", pw, got, want)
		}
	}
}
