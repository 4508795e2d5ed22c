package domain

import "time"

// Condominium is the tenant scope owning units and charges
type Condominium struct {
	ID        int32      `json:"id"`
	Name      string     `json:"name"`
	Address   string     `json:"address"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

type CondominiumRepository interface {
	Create(condominium *Condominium) (*Condominium, error)
	GetByID(id int32) (*Condominium, error)
	Update(id int32, name, address string) (*Condominium, error)
	SoftDelete(id int32) error
}
