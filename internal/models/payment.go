package models

// PaymentEventModel is the audit trail of successful memory-page purchases
// reported by the payment provider. Processing an event extends the matching
// keeper assignment.
type PaymentEventModel struct {
	Base
	MemorialSlug   string `json:"memorial_slug" gorm:"not null;index"`
	ActorID        string `json:"actor_id"      gorm:"not null;index"`
	Package        string `json:"package"       gorm:"not null"`
	DurationMonths int    `json:"duration_months"`
	Processed      bool   `json:"processed"     gorm:"default:false"`
}

func (PaymentEventModel) TableName() string { return "payment_events" }
