package request

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin user"`
}
