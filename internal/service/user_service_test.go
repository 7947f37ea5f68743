package service_test

import (
	"context"
	"testing"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/service"
	"go-pos-inventory/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)

	u, err := f.accounts.CreateAccount(ctx, &service.CreateAccountRequest{
		Username: "cashier1", Password: "secret1", Role: model.RoleCashier,
	}, admin)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, u.Status)
	assert.Equal(t, "admin", u.CreatedBy)
	assert.NotEqual(t, "secret1", u.Password)

	_, err = f.auth.Authenticate(ctx, "cashier1", "secret1")
	assert.NoError(t, err)

	_, err = f.accounts.CreateAccount(ctx, &service.CreateAccountRequest{
		Username: "cashier1", Password: "other12", Role: model.RoleAdmin,
	}, admin)
	assert.ErrorIs(t, err, service.ErrDuplicateUsername)

	assert.Len(t, f.hub.Broadcast, 1, "account_created is published once")
}

func TestCreateAccount_ExplicitStatus(t *testing.T) {
	f := newFixture(t)
	u, err := f.accounts.CreateAccount(context.Background(), &service.CreateAccountRequest{
		Username: "trainee", Password: "secret1", Role: model.RoleCashier, Status: model.StatusPending,
	}, f.admin(t))
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, u.Status)
}

func TestCreateAccount_Validation(t *testing.T) {
	f := newFixture(t)
	admin := f.admin(t)

	tests := []struct {
		name  string
		req   service.CreateAccountRequest
		field string
	}{
		{"short password", service.CreateAccountRequest{Username: "cashier1", Password: "123", Role: model.RoleCashier}, "password"},
		{"missing username", service.CreateAccountRequest{Password: "secret1", Role: model.RoleCashier}, "username"},
		{"unknown role", service.CreateAccountRequest{Username: "cashier1", Password: "secret1", Role: "Manager"}, "role"},
		{"unknown status", service.CreateAccountRequest{Username: "cashier1", Password: "secret1", Role: model.RoleCashier, Status: "Banned"}, "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.accounts.CreateAccount(context.Background(), &tt.req, admin)
			var verr *service.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestSetStatus_AnyDirectionIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	u := testutil.SeedUser(t, f.db, "cashier1", "secret1", model.RoleCashier, model.StatusPending)

	for _, status := range []model.AccountStatus{
		model.StatusApproved, model.StatusApproved, model.StatusRejected, model.StatusApproved, model.StatusPending,
	} {
		got, err := f.accounts.SetStatus(ctx, u.ID, status, admin)
		require.NoError(t, err)
		assert.Equal(t, status, got.Status)
	}

	_, err := f.accounts.SetStatus(ctx, uuid.New(), model.StatusApproved, admin)
	assert.ErrorIs(t, err, service.ErrUserNotFound)

	var verr *service.ValidationError
	_, err = f.accounts.SetStatus(ctx, u.ID, "Frozen", admin)
	assert.ErrorAs(t, err, &verr)
}

func TestDeleteAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	other := testutil.SeedUser(t, f.db, "cashier1", "secret1", model.RoleCashier, model.StatusApproved)

	assert.ErrorIs(t, f.accounts.DeleteAccount(ctx, admin.UserID, admin), service.ErrSelfDelete)

	require.NoError(t, f.accounts.DeleteAccount(ctx, other.ID, admin))
	assert.ErrorIs(t, f.accounts.DeleteAccount(ctx, other.ID, admin), service.ErrUserNotFound)

	list, err := f.accounts.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "admin", list[0].Username)
}

func TestListAccounts(t *testing.T) {
	f := newFixture(t)
	f.admin(t)
	f.cashier(t, "cashier1")
	f.cashier(t, "cashier2")

	list, err := f.accounts.ListAccounts(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 3)
	for i := 1; i < len(list); i++ {
		assert.False(t, list[i].CreatedAt.After(list[i-1].CreatedAt))
	}
}
