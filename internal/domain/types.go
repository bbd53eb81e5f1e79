package domain

// User is a chat-platform account that owns categories
type User struct {
	TelegramUserID int64 `json:"telegram_user_id" db:"telegram_user_id"`
}

// Category is a named group of contacts owned by one user
type Category struct {
	ID          int64  `json:"id" db:"id"`
	OwnerUserID int64  `json:"owner_user_id" db:"owner_user_id"`
	Name        string `json:"name" db:"name"`
}

// Contact is a display name and a free-form handle inside a category
type Contact struct {
	ID           int64  `json:"id" db:"id"`
	CategoryID   int64  `json:"category_id" db:"category_id"`
	DisplayName  string `json:"display_name" db:"display_name"`
	ContactValue string `json:"contact_value" db:"contact_value"`
}
