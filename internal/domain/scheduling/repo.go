package scheduling

import "context"

// Repository is the appointments collection. Lookups return unordered results.
type Repository interface {
	Insert(ctx context.Context, a *Appointment) error
	Put(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*Appointment, error)
	List(ctx context.Context) ([]*Appointment, error)
	ListByDate(ctx context.Context, date string) ([]*Appointment, error)
	ListByDateRange(ctx context.Context, from, to string) ([]*Appointment, error)
	ListByPatientName(ctx context.Context, name string) ([]*Appointment, error)
	Clear(ctx context.Context) error
}
