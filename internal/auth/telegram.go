package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// VerifyTelegram checks the signature of a Telegram login-widget
// payload. The widget signs the sorted key=value pairs (minus the hash
// field itself) with HMAC-SHA256 keyed by SHA256(bot token); the hash
// field carries the expected hex digest. Telegram sends the hash in
// lowercase hex, so the comparison is done on lowercase strings.
func VerifyTelegram(data map[string]string, botToken string) bool {
	checkHash, ok := data["hash"]
	if !ok || checkHash == "" || botToken == "" {
		return false
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		if k != "hash" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+data[k])
	}
	checkString := strings.Join(pairs, "\n")

	secret := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(checkString))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(strings.ToLower(checkHash)))
}

// TelegramUsername derives the stored username for a widget payload:
// the Telegram handle when present, otherwise telegram_<id>.
func TelegramUsername(data map[string]string) string {
	if u := data["username"]; u != "" {
		return u
	}
	return fmt.Sprintf("telegram_%s", data["id"])
}
