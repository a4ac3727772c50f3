package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/jinzhu/gorm"
)

// StringSlice represents a slice of strings that can be stored in the database
type StringSlice []string

// Value converts the slice to a JSON string for storage
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	return json.Marshal(s)
}

// Scan converts the database value back to a slice
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return errors.New("unsupported type for StringSlice")
	}
}

// Float32Slice represents an embedding vector stored as JSON text
type Float32Slice []float32

// Value converts the vector to a JSON string for storage
func (f Float32Slice) Value() (driver.Value, error) {
	if len(f) == 0 {
		return "[]", nil
	}
	return json.Marshal(f)
}

// Scan converts the database value back to a vector
func (f *Float32Slice) Scan(value interface{}) error {
	if value == nil {
		*f = Float32Slice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	default:
		return errors.New("unsupported type for Float32Slice")
	}
}

// CatalogRecipe is a recipe in the retrieval catalog, with its embedding
// precomputed when the catalog is loaded
type CatalogRecipe struct {
	gorm.Model
	Title        string
	Instructions string       `gorm:"type:text"`
	Ingredients  StringSlice  `gorm:"type:text"`
	Embedding    Float32Slice `gorm:"type:text"`
}

// TableName sets the table name for CatalogRecipe
func (CatalogRecipe) TableName() string {
	return "recipes"
}
