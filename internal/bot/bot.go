// Package bot runs the Telegram companion bot. It greets anyone who
// messages it, which is how users discover the login widget's bot
// before authenticating on the site. The bot is a plain long-polling
// loop over the Telegram HTTP API; it shares the process with the web
// server but never blocks it.
package bot

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
)

const apiBase = "https://api.telegram.org/bot%s/%s"

type update struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		From struct {
			FirstName string `json:"first_name"`
		} `json:"from"`
	} `json:"message"`
}

type updatesResp struct {
	OK     bool     `json:"ok"`
	Result []update `json:"result"`
}

// Run long-polls getUpdates until the context is cancelled. Transient
// API failures are logged and retried after a short pause; the loop
// never takes the process down.
func Run(ctx context.Context, token string) {
	rc := resty.New().SetTimeout(40 * time.Second)
	var offset int64

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		var updates updatesResp
		_, err := rc.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"timeout": "30",
				"offset":  fmt.Sprintf("%d", offset),
			}).
			SetResult(&updates).
			Get(fmt.Sprintf(apiBase, token, "getUpdates"))
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("telegram bot: getUpdates failed: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		for _, u := range updates.Result {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			if u.Message == nil {
				continue
			}
			name := u.Message.From.FirstName
			if name == "" {
				name = "friend"
			}
			reply := fmt.Sprintf("Hi, %s! I'm the login bot for your notes.", name)
			_, err := rc.R().
				SetContext(ctx).
				SetQueryParams(map[string]string{
					"chat_id": fmt.Sprintf("%d", u.Message.Chat.ID),
					"text":    reply,
				}).
				Get(fmt.Sprintf(apiBase, token, "sendMessage"))
			if err != nil && ctx.Err() == nil {
				log.Printf("telegram bot: sendMessage failed: %v", err)
			}
		}
	}
}
