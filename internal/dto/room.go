package dto

// RoomRequest creates or updates a catalog room. IsActive left nil keeps
// (or defaults) the active flag.
type RoomRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=64"`
	Capacity int    `json:"capacity" validate:"required,min=1,max=1000"`
	IsLab    bool   `json:"isLab"`
	IsActive *bool  `json:"isActive"`
}
