package db_models

// Account is the login identity. Username holds the email address.
type Account struct {
	BaseModel
	Username     string `gorm:"size:150;uniqueIndex;not null"`
	Name         string `gorm:"size:150"`
	PasswordHash string `gorm:"not null"`

	Trips []Trip `gorm:"constraint:OnDelete:CASCADE"`
}
