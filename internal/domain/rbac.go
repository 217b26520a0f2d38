package domain

// EnforceRequest is shared by the rbac package and the gin middleware so
// neither has to import the other.
type EnforceRequest struct {
	Role     string `json:"role" binding:"required"`
	Resource string `json:"resource" binding:"required"`
	Action   string `json:"action" binding:"required"`
}

type EnforceResponse struct {
	Allowed bool `json:"allowed"`
}

type PolicyResponse struct {
	Role     string `json:"role"`
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

type RoleResponse struct {
	Name     string   `json:"name"`
	Inherits []string `json:"inherits"`
}
