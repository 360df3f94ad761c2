package types

// User is a registered community member.
type User struct {
	UserID     string `json:"user_id"`     // UUID v7, generated on registration.
	Name       string `json:"user_name"`   // Unique display name.
	ExternalID int64  `json:"external_id"` // Unique chat-platform account id.
}

// Status is the ownership flag for one (user, item) pair.
type Status struct {
	UserID  string `json:"user_id"`
	ItemID  string `json:"item_id"`
	HasItem bool   `json:"has_item"`
}
