package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"testing"
)

// signPayload reproduces the widget's signing scheme so tests can build
// valid payloads for an arbitrary bot token.
func signPayload(data map[string]string, botToken string) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+data[k])
	}
	secret := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(strings.Join(pairs, "\n")))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyTelegram_ValidSignature(t *testing.T) {
	const token = "12345:TEST_TOKEN"
	data := map[string]string{
		"id":         "987654",
		"first_name": "Ada",
		"username":   "ada_l",
		"auth_date":  "1756700000",
	}
	data["hash"] = signPayload(data, token)

	if !VerifyTelegram(data, token) {
		t.Errorf("expected a correctly signed payload to verify")
	}
}

func TestVerifyTelegram_TamperedField(t *testing.T) {
	const token = "12345:TEST_TOKEN"
	data := map[string]string{
		"id":        "987654",
		"username":  "ada_l",
		"auth_date": "1756700000",
	}
	data["hash"] = signPayload(data, token)
	data["id"] = "111111" // attacker swaps the identity after signing

	if VerifyTelegram(data, token) {
		t.Errorf("expected a tampered payload to fail verification")
	}
}

func TestVerifyTelegram_MissingHashOrToken(t *testing.T) {
	data := map[string]string{"id": "1"}
	if VerifyTelegram(data, "token") {
		t.Errorf("payload without hash must not verify")
	}
	data["hash"] = "deadbeef"
	if VerifyTelegram(data, "") {
		t.Errorf("empty bot token must not verify")
	}
}

func TestVerifyTelegram_UppercaseHashAccepted(t *testing.T) {
	const token = "12345:TEST_TOKEN"
	data := map[string]string{"id": "42", "auth_date": "1756700000"}
	data["hash"] = strings.ToUpper(signPayload(data, token))

	if !VerifyTelegram(data, token) {
		t.Errorf("hash comparison should be case-insensitive on the hex digest")
	}
}

func TestTelegramUsername(t *testing.T) {
	if got := TelegramUsername(map[string]string{"id": "42", "username": "ada_l"}); got != "ada_l" {
		t.Errorf("expected handle, got %q", got)
	}
	if got := TelegramUsername(map[string]string{"id": "42"}); got != "telegram_42" {
		t.Errorf("expected telegram_42 fallback, got %q", got)
	}
}
