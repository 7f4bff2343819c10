package dto

type BackupResponse struct {
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	CreatedAt  string `json:"created_at"`
	AppVersion string `json:"app_version,omitempty"`
}

type RestoreRequest struct {
	Name string `json:"name" validate:"required"`
}
