package domain

import (
	"fmt"
	"time"
)

// Part is a single line of a project's RFQ parts list.
type Part struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	OrgID         string    `json:"org_id" gorm:"index;not null"`
	ProjectID     string    `json:"project_id" gorm:"index;not null;uniqueIndex:idx_part_project_item"`
	ItemNumber    int       `json:"item_number" gorm:"uniqueIndex:idx_part_project_item"`
	Name          string    `json:"name" gorm:"not null"`
	PartNumber    string    `json:"part_number"`
	Quantity      int       `json:"quantity"`
	Unit          string    `json:"unit"`
	Material      string    `json:"material,omitempty"`
	SurfaceFinish string    `json:"surface_finish,omitempty"`
	Process       string    `json:"process,omitempty"`
	DeliveryTime  string    `json:"delivery_time,omitempty"`
	Tolerance     string    `json:"tolerance,omitempty"`
	DrawingNumber string    `json:"drawing_number,omitempty"`
	Remarks       string    `json:"remarks,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (p Part) EntityID() string { return p.ID }

// Validate checks the fields every part must carry.
func (p Part) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("part name is required")
	}
	if p.Quantity <= 0 {
		return fmt.Errorf("quantity must be a positive integer, got %d", p.Quantity)
	}
	return nil
}

type PartPatch struct {
	Name          *string `json:"name,omitempty"`
	PartNumber    *string `json:"part_number,omitempty"`
	Quantity      *int    `json:"quantity,omitempty"`
	Unit          *string `json:"unit,omitempty"`
	Material      *string `json:"material,omitempty"`
	SurfaceFinish *string `json:"surface_finish,omitempty"`
	Process       *string `json:"process,omitempty"`
	DeliveryTime  *string `json:"delivery_time,omitempty"`
	Tolerance     *string `json:"tolerance,omitempty"`
	DrawingNumber *string `json:"drawing_number,omitempty"`
	Remarks       *string `json:"remarks,omitempty"`
}

func (p PartPatch) Apply(part *Part) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&part.Name, p.Name)
	set(&part.PartNumber, p.PartNumber)
	set(&part.Unit, p.Unit)
	set(&part.Material, p.Material)
	set(&part.SurfaceFinish, p.SurfaceFinish)
	set(&part.Process, p.Process)
	set(&part.DeliveryTime, p.DeliveryTime)
	set(&part.Tolerance, p.Tolerance)
	set(&part.DrawingNumber, p.DrawingNumber)
	set(&part.Remarks, p.Remarks)
	if p.Quantity != nil {
		part.Quantity = *p.Quantity
	}
}
