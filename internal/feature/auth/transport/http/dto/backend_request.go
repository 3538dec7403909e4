package dto

// BackendSwitchReq selects the new primary backend.
type BackendSwitchReq struct {
	Backend string `json:"backend" binding:"required"`
}

// BackendResp describes the current primary and the registered backends.
type BackendResp struct {
	Active   string   `json:"active"`
	Backends []string `json:"backends"`
}
