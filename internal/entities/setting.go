package entities

// Setting is an opaque value stored under a well-known key.
type Setting struct {
	ID    string `gorm:"primaryKey"`
	Value []byte
}
