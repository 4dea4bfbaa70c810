package repository

import (
	"errors"
	"time"

	emaildomain "smartrfq/internal/email/domain"
	projectdomain "smartrfq/internal/project/domain"
	quotationdomain "smartrfq/internal/quotation/domain"
	rfqdomain "smartrfq/internal/rfq/domain"
	supplierdomain "smartrfq/internal/supplier/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(project *projectdomain.Project) error {
	if project.ID == "" {
		project.ID = uuid.New().String()
	}
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now
	return r.db.Create(project).Error
}

func (r *projectRepository) FindByID(orgID, id string) (*projectdomain.Project, error) {
	var project projectdomain.Project
	err := r.db.Where("org_id = ? AND id = ?", orgID, id).First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) FindByOrg(orgID string) ([]*projectdomain.Project, error) {
	var projects []*projectdomain.Project
	err := r.db.Where("org_id = ?", orgID).Order("created_at DESC").Find(&projects).Error
	return projects, err
}

func (r *projectRepository) Update(project *projectdomain.Project) error {
	project.UpdatedAt = time.Now()
	return r.db.Save(project).Error
}

func (r *projectRepository) Delete(orgID, id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		scoped := func() *gorm.DB { return tx.Where("org_id = ? AND project_id = ?", orgID, id) }

		conversationIDs := tx.Model(&emaildomain.Conversation{}).
			Select("id").Where("org_id = ? AND project_id = ?", orgID, id)
		if err := tx.Where("conversation_id IN (?)", conversationIDs).Delete(&emaildomain.Email{}).Error; err != nil {
			return err
		}
		for _, model := range []interface{}{
			&emaildomain.Conversation{},
			&quotationdomain.Quotation{},
			&rfqdomain.Part{},
			&rfqdomain.ItemCounter{},
			&rfqdomain.File{},
		} {
			if err := scoped().Delete(model).Error; err != nil {
				return err
			}
		}
		if err := scoped().Model(&supplierdomain.Supplier{}).Update("project_id", "").Error; err != nil {
			return err
		}
		return tx.Where("org_id = ? AND id = ?", orgID, id).Delete(&projectdomain.Project{}).Error
	})
}

type projectCount struct {
	ProjectID string
	Total     int
}

func (r *projectRepository) Counts(orgID string) (map[string]int, map[string]int, error) {
	count := func(model interface{}) (map[string]int, error) {
		var rows []projectCount
		err := r.db.Model(model).
			Select("project_id, COUNT(*) AS total").
			Where("org_id = ? AND project_id <> ''", orgID).
			Group("project_id").
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}
		out := make(map[string]int, len(rows))
		for _, row := range rows {
			out[row.ProjectID] = row.Total
		}
		return out, nil
	}

	parts, err := count(&rfqdomain.Part{})
	if err != nil {
		return nil, nil, err
	}
	suppliers, err := count(&supplierdomain.Supplier{})
	if err != nil {
		return nil, nil, err
	}
	return parts, suppliers, nil
}
