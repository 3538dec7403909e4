package dto

import "kurukshetra_backend/internal/feature/auth/domain/entity"

// ProfileReq is a partial profile update. Omitted fields are left unchanged.
type ProfileReq struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

// ToEntity converts the request into the domain update.
func (r ProfileReq) ToEntity() entity.ProfileUpdate {
	return entity.ProfileUpdate{
		Username:  r.Username,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
	}
}
