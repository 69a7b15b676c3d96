package models

import (
	"errors"

	"gorm.io/gorm"
)

// QueryLog records one natural-language query run end to end: what the user
// asked, which table the schema came from, what the model produced, and how
// execution went.
type QueryLog struct {
	gorm.Model
	UUID        string `gorm:"uniqueIndex"`
	Question    string
	TableName   string
	RawSQL      string // model output before standardization
	SQL         string // standardized statement that was executed
	RowCount    int
	FromCache   bool
	Succeeded   bool
	ErrorDetail string
}

type QueryLogDAO struct {
	db *gorm.DB
}

func NewQueryLogDAO(db *gorm.DB) *QueryLogDAO {
	return &QueryLogDAO{db: db}
}

// Create persists a new query log record.
func (dao *QueryLogDAO) Create(log *QueryLog) error {
	return dao.db.Create(log).Error
}

// GetByUUID retrieves a query log by its UUID.
func (dao *QueryLogDAO) GetByUUID(uuid string) (*QueryLog, error) {
	var log QueryLog
	err := dao.db.Where("uuid = ?", uuid).First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}

// Recent retrieves the newest logs with optional pagination.
func (dao *QueryLogDAO) Recent(limit, offset int) ([]QueryLog, error) {
	var logs []QueryLog
	query := dao.db.Model(&QueryLog{}).Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&logs).Error
	return logs, err
}

// Update updates an existing query log record.
func (dao *QueryLogDAO) Update(log *QueryLog) error {
	return dao.db.Save(log).Error
}

// Count returns the total number of query logs.
func (dao *QueryLogDAO) Count() (int64, error) {
	var count int64
	err := dao.db.Model(&QueryLog{}).Count(&count).Error
	return count, err
}
