package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventregistry/internal/delivery/http/helpers"
	"eventregistry/internal/delivery/http/middleware"
	"eventregistry/internal/domain"
)

// fakeUserService implements domain.UserService for handler tests.
type fakeUserService struct {
	user       *domain.User
	err        error
	lastTarget int64
	lastRole   domain.Role
}

func (f *fakeUserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeUserService) PromoteRole(ctx context.Context, actorID, targetID int64, role domain.Role) error {
	if f.err != nil {
		return f.err
	}
	f.lastTarget = targetID
	f.lastRole = role
	return nil
}

func (f *fakeUserService) SoftDelete(ctx context.Context, actorID, targetID int64) error {
	if f.err != nil {
		return f.err
	}
	f.lastTarget = targetID
	return nil
}

func TestUserController_GetMe(t *testing.T) {
	tests := []struct {
		name       string
		withUser   bool
		fake       *fakeUserService
		wantStatus int
		wantCode   string
	}{
		{
			name:       "success",
			withUser:   true,
			fake:       &fakeUserService{user: &domain.User{ID: 7, Username: "ada", Role: domain.RoleParticipant}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "no user in context",
			fake:       &fakeUserService{},
			wantStatus: http.StatusUnauthorized,
			wantCode:   helpers.ErrCodeUnauthorized,
		},
		{
			name:       "user not found",
			withUser:   true,
			fake:       &fakeUserService{err: domain.ErrNotFound},
			wantStatus: http.StatusNotFound,
			wantCode:   helpers.ErrCodeNotFound,
		},
		{
			name:       "service error",
			withUser:   true,
			fake:       &fakeUserService{err: assert.AnError},
			wantStatus: http.StatusInternalServerError,
			wantCode:   helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewUserController(testLogger, tt.fake)

			req := httptest.NewRequest(http.MethodGet, "http://test/me", nil)
			if tt.withUser {
				req = req.WithContext(middleware.SetUserID(req.Context(), 7))
			}
			rr := httptest.NewRecorder()

			ctrl.GetMe(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			envelope := decodeEnvelope(t, rr)
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				data, err := json.Marshal(envelope.Data)
				require.NoError(t, err)
				var u domain.User
				require.NoError(t, json.Unmarshal(data, &u))
				assert.Equal(t, int64(7), u.ID)
				return
			}
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantCode, envelope.Error.Code)
		})
	}
}

func TestUserController_UpdateRole(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		fake       *fakeUserService
		wantStatus int
		wantCode   string
	}{
		{
			name:       "role updated",
			body:       `{"role":"STAFF"}`,
			fake:       &fakeUserService{},
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown role",
			body:       `{"role":"SUPERUSER"}`,
			fake:       &fakeUserService{},
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "non-admin is forbidden",
			body:       `{"role":"STAFF"}`,
			fake:       &fakeUserService{err: domain.ErrForbidden},
			wantStatus: http.StatusForbidden,
			wantCode:   helpers.ErrCodeForbidden,
		},
		{
			name:       "target not found",
			body:       `{"role":"STAFF"}`,
			fake:       &fakeUserService{err: domain.ErrNotFound},
			wantStatus: http.StatusNotFound,
			wantCode:   helpers.ErrCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewUserController(testLogger, tt.fake)

			req := httptest.NewRequest(http.MethodPut, "http://test/users/2/role", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.SetPathValue("userID", "2")
			req = req.WithContext(middleware.SetUserID(req.Context(), 1))
			rr := httptest.NewRecorder()

			ctrl.UpdateRole(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			envelope := decodeEnvelope(t, rr)
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				assert.Equal(t, int64(2), tt.fake.lastTarget)
				assert.Equal(t, domain.RoleStaff, tt.fake.lastRole)
				return
			}
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantCode, envelope.Error.Code)
		})
	}
}

func TestUserController_Delete(t *testing.T) {
	tests := []struct {
		name       string
		fake       *fakeUserService
		wantStatus int
		wantCode   string
	}{
		{name: "deleted", fake: &fakeUserService{}, wantStatus: http.StatusOK},
		{name: "self-delete rejected", fake: &fakeUserService{err: domain.ErrInvalidInput}, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest},
		{name: "non-admin is forbidden", fake: &fakeUserService{err: domain.ErrForbidden}, wantStatus: http.StatusForbidden, wantCode: helpers.ErrCodeForbidden},
		{name: "target not found", fake: &fakeUserService{err: domain.ErrNotFound}, wantStatus: http.StatusNotFound, wantCode: helpers.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewUserController(testLogger, tt.fake)

			req := httptest.NewRequest(http.MethodDelete, "http://test/users/2", nil)
			req.SetPathValue("userID", "2")
			req = req.WithContext(middleware.SetUserID(req.Context(), 1))
			rr := httptest.NewRecorder()

			ctrl.Delete(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			envelope := decodeEnvelope(t, rr)
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				assert.Equal(t, int64(2), tt.fake.lastTarget)
				return
			}
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantCode, envelope.Error.Code)
		})
	}
}
