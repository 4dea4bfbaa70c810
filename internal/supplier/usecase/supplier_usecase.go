package usecase

import (
	"fmt"
	"strings"

	supplierdomain "smartrfq/internal/supplier/domain"
	supplierdto "smartrfq/internal/supplier/dto"
	"smartrfq/internal/supplier/repository"
	"smartrfq/pkg/apierr"
	"smartrfq/pkg/fuzzy"

	"github.com/emersion/go-message/mail"
	"gorm.io/datatypes"
)

type supplierUsecase struct {
	supplierRepo repository.SupplierRepository
}

func NewSupplierUsecase(supplierRepo repository.SupplierRepository) SupplierUsecase {
	return &supplierUsecase{supplierRepo: supplierRepo}
}

func (u *supplierUsecase) ListSuppliers(orgID, projectID string) ([]*supplierdomain.Supplier, error) {
	if projectID == "" || projectID == supplierdomain.GlobalKey {
		return u.supplierRepo.FindByOrg(orgID)
	}
	return u.supplierRepo.FindByProject(orgID, projectID)
}

func (u *supplierUsecase) SearchSuppliers(orgID, projectID, query string) ([]*supplierdomain.Supplier, error) {
	suppliers, err := u.ListSuppliers(orgID, projectID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return suppliers, nil
	}

	byID := make(map[string]*supplierdomain.Supplier, len(suppliers))
	candidates := make([]fuzzy.Candidate, 0, len(suppliers))
	for _, s := range suppliers {
		byID[s.ID] = s
		candidates = append(candidates, fuzzy.Candidate{
			ID:     s.ID,
			Fields: []string{s.Name, s.Email, strings.Join(s.Tags, " ")},
		})
	}
	ranked := fuzzy.Rank(query, candidates)
	out := make([]*supplierdomain.Supplier, 0, len(ranked))
	for _, id := range ranked {
		out = append(out, byID[id])
	}
	return out, nil
}

func (u *supplierUsecase) GetSupplier(orgID, id string) (*supplierdomain.Supplier, error) {
	supplier, err := u.supplierRepo.FindByID(orgID, id)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, fmt.Errorf("supplier %s: %w", id, apierr.ErrNotFound)
	}
	return supplier, nil
}

func normalizeEmail(email string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return "", fmt.Errorf("%w: invalid email %q", apierr.ErrInvalid, email)
	}
	return strings.ToLower(addr.Address), nil
}

func (u *supplierUsecase) CreateSupplier(orgID string, req *supplierdto.CreateSupplierRequest) (*supplierdomain.Supplier, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", apierr.ErrInvalid)
	}

	existing, err := u.supplierRepo.FindByEmail(orgID, email)
	if err != nil {
		return nil, err
	}
	for _, s := range existing {
		if s.ProjectID != req.ProjectID {
			continue
		}
		s.Name = req.Name
		if req.Phone != "" {
			s.Phone = req.Phone
		}
		if req.Address != "" {
			s.Address = req.Address
		}
		if req.Notes != "" {
			s.Notes = req.Notes
		}
		if req.Tags != nil {
			s.Tags = datatypes.JSONSlice[string](req.Tags)
		}
		if err := u.supplierRepo.Update(s); err != nil {
			return nil, err
		}
		return s, nil
	}

	supplier := &supplierdomain.Supplier{
		OrgID:     orgID,
		ProjectID: req.ProjectID,
		Name:      strings.TrimSpace(req.Name),
		Email:     email,
		Phone:     req.Phone,
		Address:   req.Address,
		Tags:      datatypes.JSONSlice[string](req.Tags),
		Notes:     req.Notes,
	}
	if err := u.supplierRepo.Create(supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

func (u *supplierUsecase) UpdateSupplier(orgID, id string, patch *supplierdomain.Patch) (*supplierdomain.Supplier, error) {
	if patch.Email != nil {
		email, err := normalizeEmail(*patch.Email)
		if err != nil {
			return nil, err
		}
		patch.Email = &email
	}
	supplier, err := u.GetSupplier(orgID, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(supplier)
	if err := u.supplierRepo.Update(supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

func (u *supplierUsecase) DeleteSupplier(orgID, id string) error {
	if _, err := u.GetSupplier(orgID, id); err != nil {
		return err
	}
	return u.supplierRepo.Delete(orgID, id)
}

func (u *supplierUsecase) MatchSender(email string) ([]*supplierdomain.Supplier, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	return u.supplierRepo.FindByEmailAnyOrg(normalized)
}
