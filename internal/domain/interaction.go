package domain

import "time"

const DefaultChannel = "web_widget"

type Interaction struct {
	ID          int64     `json:"id"`
	SessionID   string    `json:"session_id"`
	Channel     string    `json:"channel"`
	Language    *string   `json:"language"`
	UserMessage string    `json:"user_message"`
	BotResponse *string   `json:"bot_response"`
	UserID      *int64    `json:"user_id"`
	AgentID     *int64    `json:"agent_id"`
	CreatedAt   time.Time `json:"created_at"`
}
