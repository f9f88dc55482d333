package fixit

import "github.com/garrettladley/fixit/internal/notification"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type User struct {
	ID    notification.ID   `json:"id"`
	Name  string            `json:"name"`
	Email string            `json:"email,omitempty"`
	Role  notification.Role `json:"role"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type countResponse struct {
	Count int `json:"count"`
}

// PublishRequest creates a notification for RecipientID. Only development
// servers accept it.
type PublishRequest struct {
	RecipientID    notification.ID   `json:"recipientId"`
	SenderID       notification.ID   `json:"senderId"`
	SenderRole     notification.Role `json:"senderRole"`
	SenderName     string            `json:"senderName"`
	MessageContent string            `json:"messageContent"`
}
