package documents

import "context"

// Repository is the documents collection. Lookups return unordered results.
type Repository interface {
	Insert(ctx context.Context, d *Document) error
	Put(ctx context.Context, d *Document) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*Document, error)
	List(ctx context.Context) ([]*Document, error)
	ListByStatus(ctx context.Context, status string) ([]*Document, error)
	ListByType(ctx context.Context, docType string) ([]*Document, error)
	ListByPatientName(ctx context.Context, name string) ([]*Document, error)
	ListByDateRange(ctx context.Context, from, to string) ([]*Document, error)
	ListByAppointment(ctx context.Context, appointmentID int64, status string) ([]*Document, error)
	Clear(ctx context.Context) error
}
