package httpdto

// ListAccountsRequest captures the query params of GET /admin/accounts
type ListAccountsRequest struct {
	Kind  string `form:"kind"`
	Page  int    `form:"page"`
	Limit int    `form:"limit"`
}
