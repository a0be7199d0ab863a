package models

// NotificationModel is an in-app notification delivered best-effort; a failed
// write never fails the operation that triggered it.
type NotificationModel struct {
	Base
	RecipientID string `json:"recipient_id" gorm:"not null;index"`
	Kind        string `json:"kind"         gorm:"index"`
	Title       string `json:"title"`
	Body        string `json:"body"         gorm:"type:text"`
	RelatedID   string `json:"related_id"`
	Read        bool   `json:"read"         gorm:"default:false;index"`
}

func (NotificationModel) TableName() string { return "notifications" }
