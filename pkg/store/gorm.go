package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"instance-doctor/pkg/model"
)

// ReportRow is the MySQL row holding the latest report of one host.
type ReportRow struct {
	Host        string    `gorm:"primaryKey;size:191"`
	RunID       string    `gorm:"size:64"`
	EvaluatedAt time.Time `gorm:"index"`
	Body        []byte    `gorm:"type:longblob"`
}

func (ReportRow) TableName() string { return "fleet_reports" }

// GormStore persists latest reports through gorm.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) SaveReport(r model.FleetReport) error {
	if s.db == nil {
		return ErrNotConfigured
	}
	body, err := json.Marshal(r)
	if err != nil {
		return err
	}
	row := ReportRow{Host: HostKey(r.Host), RunID: r.RunID, EvaluatedAt: r.EvaluatedAt, Body: body}
	if err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("save report %s: %w", row.Host, err)
	}
	return nil
}

func (s *GormStore) LatestReport(host string) (model.FleetReport, bool, error) {
	if s.db == nil {
		return model.FleetReport{}, false, ErrNotConfigured
	}
	var row ReportRow
	q := s.db.Model(&ReportRow{})
	if host != "" {
		q = q.Where("host = ?", host)
	} else {
		q = q.Order("evaluated_at DESC")
	}
	if err := q.Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.FleetReport{}, false, nil
		}
		return model.FleetReport{}, false, err
	}
	r, err := decodeRow(row)
	if err != nil {
		return model.FleetReport{}, false, err
	}
	return r, true, nil
}

func (s *GormStore) ListReports() ([]model.FleetReport, error) {
	if s.db == nil {
		return nil, ErrNotConfigured
	}
	var rows []ReportRow
	if err := s.db.Order("host").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.FleetReport, 0, len(rows))
	for _, row := range rows {
		r, err := decodeRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func decodeRow(row ReportRow) (model.FleetReport, error) {
	var r model.FleetReport
	if err := json.Unmarshal(row.Body, &r); err != nil {
		return model.FleetReport{}, fmt.Errorf("decode report %s: %w", row.Host, err)
	}
	return r, nil
}
