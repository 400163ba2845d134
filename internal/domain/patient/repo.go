package patient

import "context"

type Repository interface {
	Insert(ctx context.Context, p *Patient) error
	Put(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*Patient, error)
	List(ctx context.Context) ([]*Patient, error)
	ListByName(ctx context.Context, name string) ([]*Patient, error)
	Clear(ctx context.Context) error
}
