package model

// TrainingRecord is a single logged set group: count repetitions times Sets
// sets of one exercise on one calendar day.
//
// ExerciseName is a soft reference to Exercise.Name, not to its id, so a
// record stays readable after its exercise is soft-deleted. A rename of the
// exercise cascades into these rows.
type TrainingRecord struct {
	ID           string `gorm:"primaryKey"`
	Date         string `gorm:"index"` // YYYY-MM-DD, the day the user assigned
	ExerciseName string `gorm:"index"`
	Count        int
	Sets         int
	Weight       *float64 // nil = bodyweight / unspecified
	CreatedAt    string
	UpdatedAt    string
}
