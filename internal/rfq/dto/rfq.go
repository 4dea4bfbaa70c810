package dto

import rfqdomain "smartrfq/internal/rfq/domain"

type CreateItemRequest struct {
	Name          string `json:"name" binding:"required"`
	PartNumber    string `json:"part_number"`
	Quantity      int    `json:"quantity" binding:"required,min=1"`
	Unit          string `json:"unit"`
	Material      string `json:"material"`
	SurfaceFinish string `json:"surface_finish"`
	Process       string `json:"process"`
	DeliveryTime  string `json:"delivery_time"`
	Tolerance     string `json:"tolerance"`
	DrawingNumber string `json:"drawing_number"`
	Remarks       string `json:"remarks"`
}

func (r CreateItemRequest) Part() rfqdomain.Part {
	return rfqdomain.Part{
		Name:          r.Name,
		PartNumber:    r.PartNumber,
		Quantity:      r.Quantity,
		Unit:          r.Unit,
		Material:      r.Material,
		SurfaceFinish: r.SurfaceFinish,
		Process:       r.Process,
		DeliveryTime:  r.DeliveryTime,
		Tolerance:     r.Tolerance,
		DrawingNumber: r.DrawingNumber,
		Remarks:       r.Remarks,
	}
}

type BulkCreateItemsRequest struct {
	Items []CreateItemRequest `json:"items" binding:"required,min=1,dive"`
}

type BatchDeleteRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

type BatchDeleteResponse struct {
	Deleted int `json:"deleted"`
}

type ItemsResponse struct {
	Items []*rfqdomain.Part `json:"items"`
}

type FilesResponse struct {
	Files []*rfqdomain.File `json:"files"`
}

// RowError reports a CSV row that could not be imported. Row is 1-based and
// counts the header line.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type ImportResult struct {
	Items  []*rfqdomain.Part `json:"items"`
	Errors []RowError        `json:"errors"`
}
