package model

// Meta holds key/value pairs stored alongside the data, currently only the
// schema version tag. The tag is carried through but never interpreted.
type Meta struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

func (Meta) TableName() string {
	return "meta"
}
