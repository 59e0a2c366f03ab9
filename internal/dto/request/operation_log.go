package request

type OperationLogListRequest struct {
	PaginatedRequest
	Action       string `json:"action" validate:"omitempty,oneof=create update delete import image_upload image_sync login role_change"`
	ResourceType string `json:"resource_type" validate:"omitempty,oneof=movie tv actor review user image"`
	UserID       string `json:"user_id" validate:"omitempty,uuid"`
	Query        string `json:"q" validate:"max=100"`
}
