package dto

type NotificationResponse struct {
	ID        string `json:"id"`
	Channel   string `json:"channel"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

type NotificationFilter struct {
	Channel    string `form:"channel"`
	UnreadOnly bool   `form:"unread"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}
