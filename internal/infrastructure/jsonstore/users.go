package jsonstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"valutatrade-service/internal/application"
	"valutatrade-service/internal/domain"
)

var _ application.UserRepo = (*UserRepo)(nil)

// UserRepo stores registered users in one JSON document.
type UserRepo struct {
	path string
	mu   sync.Mutex
}

func NewUserRepo(path string) *UserRepo {
	return &UserRepo{path: path}
}

type userDoc struct {
	UserID           int64     `json:"user_id"`
	Username         string    `json:"username"`
	HashedPassword   string    `json:"hashed_password"`
	Salt             string    `json:"salt"`
	RegistrationDate time.Time `json:"registration_date"`
}

func (r *UserRepo) load() []userDoc {
	var docs []userDoc
	readJSON(r.path, &docs)
	return docs
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, doc := range r.load() {
		if doc.Username == username {
			return domain.User{
				ID:             doc.UserID,
				Username:       doc.Username,
				HashedPassword: doc.HashedPassword,
				Salt:           doc.Salt,
				RegisteredAt:   doc.RegistrationDate,
			}, nil
		}
	}
	return domain.User{}, fmt.Errorf("%w: user %q", domain.ErrNotFound, username)
}

func (r *UserRepo) Create(_ context.Context, u domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs := r.load()
	var maxID int64
	for _, doc := range docs {
		if doc.Username == u.Username {
			return domain.User{}, fmt.Errorf("%w: username %q", application.ErrUserExists, u.Username)
		}
		if doc.UserID > maxID {
			maxID = doc.UserID
		}
	}
	u.ID = maxID + 1
	docs = append(docs, userDoc{
		UserID:           u.ID,
		Username:         u.Username,
		HashedPassword:   u.HashedPassword,
		Salt:             u.Salt,
		RegistrationDate: u.RegisteredAt,
	})
	if err := writeAtomic(r.path, docs); err != nil {
		return domain.User{}, err
	}
	return u, nil
}
