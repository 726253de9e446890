package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gearguard/gearguard/internal/models"
)

func TestUserHandler_List(t *testing.T) {
	mockUsers := new(MockUserCollection)
	handler := NewUserHandler(mockUsers)

	teamID := primitive.NewObjectID().Hex()
	mockUsers.On("FindUsers", mock.Anything, bson.M{"role": "technician", "team_id": teamID}).
		Return([]models.User{{ID: primitive.NewObjectID(), Role: models.RoleTechnician}}, nil)

	req := withClaims(httptest.NewRequest("GET", "/api/users?role=technician&teamId="+teamID, nil), managerClaims())
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var listed []models.User
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Len(t, listed, 1)
	mockUsers.AssertExpectations(t)
}

func TestUserHandler_GetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mockUsers := new(MockUserCollection)
		handler := NewUserHandler(mockUsers)

		id := primitive.NewObjectID()
		user := &models.User{ID: id, Name: "Jonas Weber", Role: models.RoleTechnician}
		mockUsers.On("FindUserByID", mock.Anything, id.Hex()).Return(user, nil)

		req := withClaims(httptest.NewRequest("GET", "/api/users/"+id.Hex(), nil), managerClaims())
		req.SetPathValue("id", id.Hex())
		w := httptest.NewRecorder()

		handler.GetByID(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		mockUsers := new(MockUserCollection)
		handler := NewUserHandler(mockUsers)

		id := primitive.NewObjectID()
		mockUsers.On("FindUserByID", mock.Anything, id.Hex()).Return(nil, mongo.ErrNoDocuments)

		req := withClaims(httptest.NewRequest("GET", "/api/users/"+id.Hex(), nil), managerClaims())
		req.SetPathValue("id", id.Hex())
		w := httptest.NewRecorder()

		handler.GetByID(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUserHandler_Update(t *testing.T) {
	t.Run("role and activation update", func(t *testing.T) {
		mockUsers := new(MockUserCollection)
		handler := NewUserHandler(mockUsers)

		id := primitive.NewObjectID()
		updated := &models.User{ID: id, Role: models.RoleTechnician, IsActive: false}

		mockUsers.On("UpdateUserFields", mock.Anything, id.Hex(), mock.MatchedBy(func(fields bson.M) bool {
			return fields["role"] == "technician" && fields["is_active"] == false
		})).Return(nil)
		mockUsers.On("FindUserByID", mock.Anything, id.Hex()).Return(updated, nil)

		body := []byte(`{"role": "technician", "isActive": false}`)
		req := withClaims(httptest.NewRequest("PUT", "/api/users/"+id.Hex(), bytes.NewBuffer(body)), managerClaims())
		req.SetPathValue("id", id.Hex())
		w := httptest.NewRecorder()

		handler.Update(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockUsers.AssertExpectations(t)
	})

	t.Run("invalid role", func(t *testing.T) {
		mockUsers := new(MockUserCollection)
		handler := NewUserHandler(mockUsers)

		id := primitive.NewObjectID()
		body := []byte(`{"role": "superuser"}`)
		req := withClaims(httptest.NewRequest("PUT", "/api/users/"+id.Hex(), bytes.NewBuffer(body)), managerClaims())
		req.SetPathValue("id", id.Hex())
		w := httptest.NewRecorder()

		handler.Update(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockUsers.AssertNotCalled(t, "UpdateUserFields", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("password is never updatable here", func(t *testing.T) {
		mockUsers := new(MockUserCollection)
		handler := NewUserHandler(mockUsers)

		id := primitive.NewObjectID()
		body := []byte(`{"passwordHash": "sneaky"}`)
		req := withClaims(httptest.NewRequest("PUT", "/api/users/"+id.Hex(), bytes.NewBuffer(body)), managerClaims())
		req.SetPathValue("id", id.Hex())
		w := httptest.NewRecorder()

		handler.Update(w, req)

		// Unknown keys are dropped, leaving nothing to update.
		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockUsers.AssertNotCalled(t, "UpdateUserFields", mock.Anything, mock.Anything, mock.Anything)
	})
}
