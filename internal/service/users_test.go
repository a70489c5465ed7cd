package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/akovalyov/deeptrace/internal/apperr"
	"github.com/akovalyov/deeptrace/internal/models"
	"github.com/akovalyov/deeptrace/internal/service"
)

type mockUserRepo struct {
	GetFunc          func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc   func(ctx context.Context, email string) (*models.User, error)
	CreateFunc       func(ctx context.Context, draft models.UserCreate) (*models.User, error)
	UpdateFunc       func(ctx context.Context, id string, patch models.UserUpdate) (*models.User, error)
	AuthenticateFunc func(ctx context.Context, email, password string) (*models.User, error)
}

func (m *mockUserRepo) Get(ctx context.Context, id string) (*models.User, error) {
	return m.GetFunc(ctx, id)
}
func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.GetByEmailFunc(ctx, email)
}
func (m *mockUserRepo) Create(ctx context.Context, draft models.UserCreate) (*models.User, error) {
	return m.CreateFunc(ctx, draft)
}
func (m *mockUserRepo) Update(ctx context.Context, id string, patch models.UserUpdate) (*models.User, error) {
	return m.UpdateFunc(ctx, id, patch)
}
func (m *mockUserRepo) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	return m.AuthenticateFunc(ctx, email, password)
}

func TestUserCreate_FreshEmail(t *testing.T) {
	repo := &mockUserRepo{
		GetByEmailFunc: func(context.Context, string) (*models.User, error) {
			return nil, apperr.ErrNotFound
		},
		CreateFunc: func(_ context.Context, draft models.UserCreate) (*models.User, error) {
			return &models.User{ID: "u1", Email: draft.Email, IsActive: draft.IsActive}, nil
		},
	}
	svc := service.NewUserService(repo)

	u, err := svc.Create(context.Background(), models.UserCreate{
		Email: "a@x.com", Password: "pw1", IsActive: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Email != "a@x.com" {
		t.Errorf("Email = %q; want a@x.com", u.Email)
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{
		GetByEmailFunc: func(context.Context, string) (*models.User, error) {
			return &models.User{ID: "u1", Email: "dup@x.com"}, nil
		},
	}
	svc := service.NewUserService(repo)

	_, err := svc.Create(context.Background(), models.UserCreate{
		Email: "dup@x.com", Password: "pw1",
	})
	if !errors.Is(err, apperr.ErrDuplicateEmail) {
		t.Fatalf("error = %v; want ErrDuplicateEmail", err)
	}
}

func TestUserCreate_MissingFields(t *testing.T) {
	svc := service.NewUserService(&mockUserRepo{})

	for _, draft := range []models.UserCreate{
		{Email: "", Password: "pw1"},
		{Email: "a@x.com", Password: ""},
	} {
		_, err := svc.Create(context.Background(), draft)
		if !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("Create(%+v) error = %v; want ErrValidation", draft, err)
		}
	}
}

func TestUserUpdate_EmailConflict(t *testing.T) {
	repo := &mockUserRepo{
		GetFunc: func(context.Context, string) (*models.User, error) {
			return &models.User{ID: "u1", Email: "old@x.com"}, nil
		},
		GetByEmailFunc: func(_ context.Context, email string) (*models.User, error) {
			if email == "taken@x.com" {
				return &models.User{ID: "u2", Email: email}, nil
			}
			return nil, apperr.ErrNotFound
		},
		UpdateFunc: func(_ context.Context, id string, patch models.UserUpdate) (*models.User, error) {
			return &models.User{ID: id, Email: *patch.Email}, nil
		},
	}
	svc := service.NewUserService(repo)

	taken := "taken@x.com"
	_, err := svc.Update(context.Background(), "u1", models.UserUpdate{Email: &taken})
	if !errors.Is(err, apperr.ErrDuplicateEmail) {
		t.Fatalf("error = %v; want ErrDuplicateEmail", err)
	}

	free := "free@x.com"
	u, err := svc.Update(context.Background(), "u1", models.UserUpdate{Email: &free})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Email != "free@x.com" {
		t.Errorf("Email = %q; want free@x.com", u.Email)
	}
}

func TestUserUpdate_SameEmailSkipsConflictCheck(t *testing.T) {
	repo := &mockUserRepo{
		GetFunc: func(context.Context, string) (*models.User, error) {
			return &models.User{ID: "u1", Email: "same@x.com"}, nil
		},
		// GetByEmail would find the user itself; the service must not treat
		// a no-op email change as a conflict.
		GetByEmailFunc: func(context.Context, string) (*models.User, error) {
			t.Fatal("GetByEmail must not be called for an unchanged email")
			return nil, nil
		},
		UpdateFunc: func(_ context.Context, id string, patch models.UserUpdate) (*models.User, error) {
			return &models.User{ID: id, Email: *patch.Email}, nil
		},
	}
	svc := service.NewUserService(repo)

	same := "same@x.com"
	if _, err := svc.Update(context.Background(), "u1", models.UserUpdate{Email: &same}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnsureSuperuser(t *testing.T) {
	t.Run("already present", func(t *testing.T) {
		repo := &mockUserRepo{
			GetByEmailFunc: func(context.Context, string) (*models.User, error) {
				return &models.User{ID: "root", Email: "admin@x.com", IsSuperuser: true}, nil
			},
			CreateFunc: func(context.Context, models.UserCreate) (*models.User, error) {
				t.Fatal("Create must not be called when the superuser exists")
				return nil, nil
			},
		}
		svc := service.NewUserService(repo)

		u, err := svc.EnsureSuperuser(context.Background(), "admin@x.com", "changethis")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if u.ID != "root" {
			t.Errorf("ID = %q; want root", u.ID)
		}
	})

	t.Run("created once if absent", func(t *testing.T) {
		var created models.UserCreate
		repo := &mockUserRepo{
			GetByEmailFunc: func(context.Context, string) (*models.User, error) {
				return nil, apperr.ErrNotFound
			},
			CreateFunc: func(_ context.Context, draft models.UserCreate) (*models.User, error) {
				created = draft
				return &models.User{ID: "root", Email: draft.Email, IsSuperuser: true}, nil
			},
		}
		svc := service.NewUserService(repo)

		if _, err := svc.EnsureSuperuser(context.Background(), "admin@x.com", "changethis"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !created.IsSuperuser || !created.IsActive {
			t.Errorf("created = %+v; want active superuser", created)
		}
	})
}
