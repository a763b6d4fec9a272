package database

import "gorm.io/gorm"

// Pagination is the metadata block returned alongside paginated listings.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// Paginate runs a counted, offset-paginated query on tx into dest.
// Page and limit are normalised: page >= 1, 1 <= limit <= 100.
func Paginate(tx *gorm.DB, dest interface{}, page, limit int) (Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 15
	}
	if limit > 100 {
		limit = 100
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return Pagination{}, err
	}

	offset := (page - 1) * limit
	if err := tx.Offset(offset).Limit(limit).Find(dest).Error; err != nil {
		return Pagination{}, err
	}

	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}

	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}
