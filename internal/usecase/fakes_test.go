package usecase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/naruebet/portal-auth-api/internal/model"
	"github.com/naruebet/portal-auth-api/internal/repository"
)

// In-memory repository implementations used by the usecase tests. They
// return mongo.ErrNoDocuments / duplicate key errors the same way the
// real repositories do.

func duplicateKeyError() error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
}

type fakeUserRepo struct {
	users map[string]*model.User // keyed by hex id
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return nil, duplicateKeyError()
		}
	}

	user.ID = bson.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID.Hex()] = user
	return user, nil
}

func (r *fakeUserRepo) GetUser(_ context.Context, id string) (*model.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return user, nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeUserRepo) UpdateUser(
	_ context.Context,
	id string,
	params repository.UpdateUserParams,
) (*model.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	if params.Email != nil {
		user.Email = *params.Email
	}
	if params.PasswordHash != nil {
		user.PasswordHash = *params.PasswordHash
	}
	user.UpdatedAt = time.Now()
	return user, nil
}

type fakePendingRepo struct {
	pending map[string]*model.PendingSignup // keyed by email
}

func newFakePendingRepo() *fakePendingRepo {
	return &fakePendingRepo{pending: map[string]*model.PendingSignup{}}
}

func (r *fakePendingRepo) UpsertByEmail(_ context.Context, p *model.PendingSignup) error {
	now := time.Now()
	if existing, ok := r.pending[p.Email]; ok {
		existing.Username = p.Username
		existing.PasswordHash = p.PasswordHash
		existing.PhoneNumber = p.PhoneNumber
		existing.Gender = p.Gender
		existing.OTPCode = p.OTPCode
		existing.ExpiresAt = p.ExpiresAt
		existing.Used = false
		existing.UpdatedAt = now
		return nil
	}

	p.ID = bson.NewObjectID()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.pending[p.Email] = p
	return nil
}

func (r *fakePendingRepo) GetByEmailAndCode(_ context.Context, email, code string) (*model.PendingSignup, error) {
	p, ok := r.pending[email]
	if !ok || p.OTPCode != code {
		return nil, mongo.ErrNoDocuments
	}
	return p, nil
}

func (r *fakePendingRepo) DeleteByEmail(_ context.Context, email string) error {
	delete(r.pending, email)
	return nil
}

func (r *fakePendingRepo) DeleteExpiredOrUsed(_ context.Context) (int64, error) {
	var deleted int64
	now := time.Now()
	for email, p := range r.pending {
		if p.Used || now.After(p.ExpiresAt) {
			delete(r.pending, email)
			deleted++
		}
	}
	return deleted, nil
}

type fakeResetRepo struct {
	resets map[string]*model.PasswordReset // keyed by hex id
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{resets: map[string]*model.PasswordReset{}}
}

func (r *fakeResetRepo) Create(_ context.Context, reset *model.PasswordReset) (*model.PasswordReset, error) {
	reset.ID = bson.NewObjectID()
	reset.Used = false
	reset.CreatedAt = time.Now()
	reset.UpdatedAt = reset.CreatedAt
	r.resets[reset.ID.Hex()] = reset
	return reset, nil
}

func (r *fakeResetRepo) GetByCode(_ context.Context, code string) (*model.PasswordReset, error) {
	for _, reset := range r.resets {
		if reset.Code == code {
			return reset, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeResetRepo) MarkUsed(_ context.Context, id bson.ObjectID) error {
	if reset, ok := r.resets[id.Hex()]; ok {
		reset.Used = true
	}
	return nil
}

func (r *fakeResetRepo) DeleteByUserID(_ context.Context, userID bson.ObjectID) error {
	for id, reset := range r.resets {
		if reset.UserID == userID {
			delete(r.resets, id)
		}
	}
	return nil
}

func (r *fakeResetRepo) DeleteByID(_ context.Context, id bson.ObjectID) error {
	delete(r.resets, id.Hex())
	return nil
}

func (r *fakeResetRepo) liveCount(userID bson.ObjectID) int {
	count := 0
	now := time.Now()
	for _, reset := range r.resets {
		if reset.UserID == userID && !reset.Used && now.Before(reset.ExpiresAt) {
			count++
		}
	}
	return count
}

type fakeTransactor struct{}

func (fakeTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type sentEmail struct {
	to      []string
	subject string
	body    string
}

type fakeSender struct {
	sent    []sentEmail
	failErr error
}

func (s *fakeSender) SendHTML(to []string, subject, htmlBody string) error {
	if s.failErr != nil {
		return s.failErr
	}
	s.sent = append(s.sent, sentEmail{to: to, subject: subject, body: htmlBody})
	return nil
}
