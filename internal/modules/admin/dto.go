package admin

type BanRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type ExpireResult struct {
	Expired int `json:"expired"`
}
