package utils

import "testing"

type registerPayload struct {
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,pwdmin"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

func TestValidateStruct(t *testing.T) {
	ok := registerPayload{Email: "a@b.com", Password: "secret123", PasswordConfirmation: "secret123"}
	if err := ValidateStruct(&ok); err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}

	cases := []struct {
		name    string
		payload registerPayload
	}{
		{"missing email", registerPayload{Password: "secret123", PasswordConfirmation: "secret123"}},
		{"bad email", registerPayload{Email: "not-an-email", Password: "secret123", PasswordConfirmation: "secret123"}},
		{"short password", registerPayload{Email: "a@b.com", Password: "abc", PasswordConfirmation: "abc"}},
		{"mismatched confirmation", registerPayload{Email: "a@b.com", Password: "secret123", PasswordConfirmation: "secret124"}},
	}
	for _, tc := range cases {
		if err := ValidateStruct(&tc.payload); err == nil {
			t.Fatalf("%s: expected an error", tc.name)
		}
	}
}

func TestRoundFloat(t *testing.T) {
	// balances are stored at 8 decimal places; arithmetic must not leak
	// float noise into stored values
	if got := RoundFloat(0.0025-0.002, 8); got != 0.0005 {
		t.Fatalf("expected 0.0005, got %v", got)
	}
	if got := RoundFloat(0.1+0.2, 8); got != 0.3 {
		t.Fatalf("expected 0.3, got %v", got)
	}
}
