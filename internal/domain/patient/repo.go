package patient

import "context"

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id int64) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	// List returns patients newest first.
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	// Search matches keyword against name, phone and address, newest first.
	Search(ctx context.Context, keyword string, limit, offset int) ([]*Patient, int, error)
}

var searchColumns = []string{"name", "phone", "address"}

const listOrder = "created_at DESC, id DESC"
