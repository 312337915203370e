package expense

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const CollectionName = "expenses"

// Document is the shape written to the expenses collection. The zero ID is
// omitted so the driver assigns one on insert.
type Document struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Amount      float64            `bson:"amount"`
	Category    string             `bson:"category"`
	Description string             `bson:"description"`
	Date        time.Time          `bson:"date"`
}

// StoredDocument is the read-side shape. Pointer fields let the decoder
// report which expected fields were missing.
type StoredDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Amount      *float64           `bson:"amount"`
	Category    *string            `bson:"category"`
	Description *string            `bson:"description"`
	Date        *time.Time         `bson:"date"`
}

// MissingFields lists the required fields absent from the stored document.
func (d *StoredDocument) MissingFields() []string {
	var missing []string
	if d.Amount == nil {
		missing = append(missing, "amount")
	}
	if d.Category == nil {
		missing = append(missing, "category")
	}
	if d.Date == nil {
		missing = append(missing, "date")
	}
	return missing
}

// Row is the relational mapping used by the SQL backends.
type Row struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Amount      float64   `gorm:"column:amount;not null"`
	Category    string    `gorm:"column:category;not null"`
	Description string    `gorm:"column:description;not null;default:''"`
	Date        time.Time `gorm:"column:date;not null;index"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the table name for GORM
func (Row) TableName() string {
	return CollectionName
}
