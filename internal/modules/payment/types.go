package payment

type EventDTO struct {
	MemorialSlug string `json:"memorial_slug" binding:"required"`
	ActorID      string `json:"actor_id"      binding:"required"`
	Package      string `json:"package"       binding:"required"`
}
