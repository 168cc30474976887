package accountrepo

import (
	"context"
	"strings"
	"sync"

	"github.com/Overland-East-Bay/ride-hail-api/internal/domain"
	"github.com/Overland-East-Bay/ride-hail-api/internal/ports/out/accountrepo"
)

// Repo is an in-memory implementation of accountrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	byID      map[domain.AccountID]accountrepo.Account
	idByEmail map[string]domain.AccountID
}

func NewRepo() *Repo {
	return &Repo{
		byID:      make(map[domain.AccountID]accountrepo.Account),
		idByEmail: make(map[string]domain.AccountID),
	}
}

func (r *Repo) Create(ctx context.Context, a accountrepo.Account) error {
	_ = ctx
	if a.ID == "" {
		return accountrepo.ErrAlreadyExists // treat empty ID as invalid; the app layer always mints one
	}
	key := emailKey(a.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[a.ID]; ok {
		return accountrepo.ErrAlreadyExists
	}
	if _, ok := r.idByEmail[key]; ok {
		return accountrepo.ErrEmailTaken
	}

	r.byID[a.ID] = cloneAccount(a)
	r.idByEmail[key] = a.ID
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.AccountID) (accountrepo.Account, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	if !ok {
		return accountrepo.Account{}, accountrepo.ErrNotFound
	}
	return cloneAccount(a), nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (accountrepo.Account, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.idByEmail[emailKey(email)]
	if !ok {
		return accountrepo.Account{}, accountrepo.ErrNotFound
	}
	a, ok := r.byID[id]
	if !ok {
		return accountrepo.Account{}, accountrepo.ErrNotFound
	}
	return cloneAccount(a), nil
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func cloneAccount(a accountrepo.Account) accountrepo.Account {
	out := a
	if a.CarPlate != nil {
		v := *a.CarPlate
		out.CarPlate = &v
	}
	return out
}
