package model

// Exercise is one entry of the selectable exercise catalog.
//
// Deleting an exercise only clears IsActive so that historical records keep
// resolving its name and color. Timestamps are local ISO-8601 strings
// (2006-01-02T15:04:05), matching the format the records carry.
type Exercise struct {
	ID         string `gorm:"primaryKey"`
	Name       string `gorm:"index"`
	Color      string
	OrderIndex int  `gorm:"column:order_index"`
	IsActive   bool `gorm:"index"`
	CreatedAt  string
	UpdatedAt  string
}
