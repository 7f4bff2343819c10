package dto

type ScanRequest struct {
	Code string `json:"code" validate:"required,max=128"`
	Mode string `json:"mode" validate:"omitempty,oneof=single continuous"`
}

// ScanResponse reports the outcome of one detection: found, not_found or
// duplicate (suppressed by the debounce window).
type ScanResponse struct {
	Code        string           `json:"code"`
	Status      string           `json:"status"`
	Product     *ProductResponse `json:"product,omitempty"`
	VariantID   *string          `json:"variant_id,omitempty"`
	AddedToCart bool             `json:"added_to_cart"`
	Error       string           `json:"error,omitempty"`
	At          string           `json:"at"`
}

type FrameAccepted struct {
	Accepted bool `json:"accepted"`
	Replaced bool `json:"replaced"`
}
