package leads

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Repository defines the interface for lead storage. Create must report
// ErrEmailExists for a duplicate email.
type Repository interface {
	Create(ctx context.Context, req *CreateCustomerRequest) (*Lead, error)
	List(ctx context.Context, filter ListFilter) ([]*Lead, error)
}

// InMemoryRepository keeps leads in process memory; used for local runs and tests.
type InMemoryRepository struct {
	mu      sync.RWMutex
	nextID  int64
	leads   []*Lead
	byEmail map[string]struct{}
	now     func() time.Time
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byEmail: make(map[string]struct{}),
		now:     time.Now,
	}
}

// Create stores a lead and assigns the next id.
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateCustomerRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	key := emailKey(req.Email)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byEmail[key]; dup {
		return nil, ErrEmailExists
	}
	r.nextID++
	lead := &Lead{
		ID:        r.nextID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		ProjectID: req.ProjectID,
		CreatedAt: r.now().UTC(),
	}
	r.leads = append(r.leads, lead)
	r.byEmail[key] = struct{}{}
	copied := *lead
	return &copied, nil
}

// List returns leads newest first.
func (r *InMemoryRepository) List(ctx context.Context, filter ListFilter) ([]*Lead, error) {
	filter = filter.Normalize()
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Lead, 0, filter.Limit)
	skipped := 0
	for i := len(r.leads) - 1; i >= 0 && len(out) < filter.Limit; i-- {
		lead := r.leads[i]
		if filter.ProjectID != "" && lead.ProjectID != filter.ProjectID {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		copied := *lead
		out = append(out, &copied)
	}
	return out, nil
}

// emailKey is the uniqueness key; SQL stores compare the same lowered form.
func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
