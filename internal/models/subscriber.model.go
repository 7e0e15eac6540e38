package models

type Subscriber struct {
	BaseUUIDModel
	Email string `gorm:"type:text;not null;uniqueIndex" json:"email"`
}
