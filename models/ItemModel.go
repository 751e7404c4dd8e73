package models

// Item is the single persisted entity. ID is assigned by the store on insert.
type Item struct {
	ID   uint   `gorm:"primarykey" json:"id" example:"1"`
	Name string `gorm:"not null" json:"name" example:"Alice"`
}
