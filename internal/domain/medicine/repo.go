package medicine

import "context"

type Repository interface {
	Create(ctx context.Context, m *Medicine) error
	GetByID(ctx context.Context, id int64) (*Medicine, error)
	Update(ctx context.Context, m *Medicine) error
	// Search lists medicines ordered by name, optionally filtered by keyword
	// over name and description.
	Search(ctx context.Context, keyword string, limit, offset int) ([]*Medicine, int, error)
}

var searchColumns = []string{"name", "description"}

const (
	medicineCols = `id, name, description, price, stock`
	listOrder    = "name ASC, id ASC"
)
