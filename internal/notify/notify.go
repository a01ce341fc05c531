package notify

import "context"

// Notification is one composed message for a user.
type Notification struct {
	Title string
	Body  string
}

// Dispatcher delivers notifications. The Telegram bot implements it;
// delivery is fire-and-forget and no acknowledgment is observed.
type Dispatcher interface {
	Dispatch(ctx context.Context, chatID int64, n Notification) error
}
