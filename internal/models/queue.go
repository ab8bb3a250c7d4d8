package models

import "time"

// Queue is a named channel bound to at most one doctor. Deleting a queue deletes its entries.
type Queue struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"not null" json:"name"`
	DoctorID  *uint        `gorm:"index" json:"doctorId,omitempty"`
	Doctor    *Doctor      `gorm:"foreignKey:DoctorID;constraint:OnDelete:SET NULL" json:"doctor,omitempty"`
	Entries   []QueueEntry `gorm:"foreignKey:QueueID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}
