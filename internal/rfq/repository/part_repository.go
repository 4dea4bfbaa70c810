package repository

import (
	"errors"
	"fmt"
	"time"

	rfqdomain "smartrfq/internal/rfq/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type partRepository struct {
	db *gorm.DB
}

func NewPartRepository(db *gorm.DB) PartRepository {
	return &partRepository{db: db}
}

func (r *partRepository) CreateBatch(parts []*rfqdomain.Part) error {
	if len(parts) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		next := map[string]int{}
		counts := map[string]int{}
		var order []*rfqdomain.Part
		for _, p := range parts {
			if counts[p.ProjectID] == 0 {
				order = append(order, p)
			}
			counts[p.ProjectID]++
		}
		for _, p := range order {
			last, err := reserveItemNumbers(tx, p.OrgID, p.ProjectID, counts[p.ProjectID])
			if err != nil {
				return err
			}
			next[p.ProjectID] = last
		}

		now := time.Now()
		for _, p := range parts {
			next[p.ProjectID]++
			p.ItemNumber = next[p.ProjectID]
			if p.ID == "" {
				p.ID = uuid.New().String()
			}
			p.CreatedAt = now
			p.UpdatedAt = now
		}
		return tx.Create(&parts).Error
	})
}

// reserveItemNumbers advances the project's counter by n under a row lock
// and returns the last number issued before the reservation. A project
// without a counter starts after its highest existing item number.
func reserveItemNumbers(tx *gorm.DB, orgID, projectID string, n int) (int, error) {
	locked := func() (*rfqdomain.ItemCounter, error) {
		var c rfqdomain.ItemCounter
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("project_id = ?", projectID).Take(&c).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return &c, err
	}

	c, err := locked()
	if err != nil {
		return 0, err
	}
	if c == nil {
		var highest int
		row := tx.Model(&rfqdomain.Part{}).
			Where("project_id = ?", projectID).
			Select("COALESCE(MAX(item_number), 0)").
			Row()
		if err := row.Scan(&highest); err != nil {
			return 0, err
		}
		seed := rfqdomain.ItemCounter{ProjectID: projectID, OrgID: orgID, Last: highest}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return 0, err
		}
		if c, err = locked(); err != nil {
			return 0, err
		}
		if c == nil {
			return 0, fmt.Errorf("item counter for project %s missing after seeding", projectID)
		}
	}

	if err := tx.Model(&rfqdomain.ItemCounter{}).
		Where("project_id = ?", projectID).
		Update("last", c.Last+n).Error; err != nil {
		return 0, err
	}
	return c.Last, nil
}

func (r *partRepository) FindByID(orgID, id string) (*rfqdomain.Part, error) {
	var part rfqdomain.Part
	err := r.db.Where("org_id = ? AND id = ?", orgID, id).First(&part).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &part, nil
}

func (r *partRepository) FindByProject(orgID, projectID string) ([]*rfqdomain.Part, error) {
	var parts []*rfqdomain.Part
	err := r.db.Where("org_id = ? AND project_id = ?", orgID, projectID).
		Order("item_number ASC").Find(&parts).Error
	return parts, err
}

func (r *partRepository) FindByItemNumbers(orgID, projectID string, numbers []int) ([]*rfqdomain.Part, error) {
	var parts []*rfqdomain.Part
	if len(numbers) == 0 {
		return parts, nil
	}
	err := r.db.Where("org_id = ? AND project_id = ? AND item_number IN ?", orgID, projectID, numbers).
		Find(&parts).Error
	return parts, err
}

func (r *partRepository) Update(part *rfqdomain.Part) error {
	part.UpdatedAt = time.Now()
	return r.db.Save(part).Error
}

func (r *partRepository) DeleteMany(orgID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.Where("org_id = ? AND id IN ?", orgID, ids).Delete(&rfqdomain.Part{})
	return res.RowsAffected, res.Error
}
