package dto

type CategoryRequest struct {
	Name        string  `json:"name"        validate:"required,min=2,max=120"`
	Description *string `json:"description"`
}

type CategoryResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Active      bool    `json:"active"`
}

type SupplierRequest struct {
	Name        string  `json:"name"         validate:"required,min=2,max=160"`
	ContactName *string `json:"contact_name"`
	Phone       *string `json:"phone"        validate:"omitempty,max=40"`
	Email       *string `json:"email"        validate:"omitempty,email"`
	Address     *string `json:"address"`
}

type SupplierResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	ContactName *string `json:"contact_name,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Email       *string `json:"email,omitempty"`
	Address     *string `json:"address,omitempty"`
	Active      bool    `json:"active"`
}
