package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/task-user-api/internal/models"
	"github.com/yukikurage/task-user-api/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserHandlerTestSuite defines the test suite for UserHandler
type UserHandlerTestSuite struct {
	suite.Suite
	router *gin.Engine
	store  repository.Store
}

// SetupTest runs before each test
func (suite *UserHandlerTestSuite) SetupTest() {
	suite.router, suite.store = newTestRouter(suite.T())
}

func (suite *UserHandlerTestSuite) createTestTask(name string, completed bool) models.Task {
	w := performRequest(suite.router, http.MethodPost, "/api/tasks", map[string]interface{}{
		"name":      name,
		"deadline":  time.Now().UTC().Add(time.Hour).Format(time.RFC3339),
		"completed": completed,
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var task models.Task
	suite.Require().NoError(json.Unmarshal(decodeEnvelope(suite.T(), w).Data, &task))
	return task
}

func (suite *UserHandlerTestSuite) createTestUser(body map[string]interface{}) models.User {
	w := performRequest(suite.router, http.MethodPost, "/api/users", body)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var user models.User
	suite.Require().NoError(json.Unmarshal(decodeEnvelope(suite.T(), w).Data, &user))
	return user
}

// TestCreateUser_Success tests creation with pending tasks
func (suite *UserHandlerTestSuite) TestCreateUser_Success() {
	task := suite.createTestTask("T1", false)

	user := suite.createTestUser(map[string]interface{}{
		"name":         "Alice",
		"email":        "a@x.com",
		"pendingTasks": []string{task.ID},
	})

	assert.Equal(suite.T(), "Alice", user.Name)
	assert.Equal(suite.T(), []string{task.ID}, user.PendingTasks)

	w := performRequest(suite.router, http.MethodGet, "/api/tasks/"+task.ID, nil)
	var stored models.Task
	suite.Require().NoError(json.Unmarshal(decodeEnvelope(suite.T(), w).Data, &stored))
	assert.Equal(suite.T(), user.ID, stored.AssignedUser)
	assert.Equal(suite.T(), "Alice", stored.AssignedUserName)
}

// TestCreateUser_EmptyPendingTasks tests that pendingTasks serializes as an empty list
func (suite *UserHandlerTestSuite) TestCreateUser_EmptyPendingTasks() {
	w := performRequest(suite.router, http.MethodPost, "/api/users", map[string]interface{}{
		"name":  "Alice",
		"email": "a@x.com",
	})

	assert.Equal(suite.T(), http.StatusCreated, w.Code)
	env := decodeEnvelope(suite.T(), w)
	assert.Equal(suite.T(), "Create user success", env.Message)

	var data map[string]interface{}
	suite.Require().NoError(json.Unmarshal(env.Data, &data))
	assert.Equal(suite.T(), []interface{}{}, data["pendingTasks"])
}

// TestCreateUser_ValidationError tests email and pendingTasks rules
func (suite *UserHandlerTestSuite) TestCreateUser_ValidationError() {
	w := performRequest(suite.router, http.MethodPost, "/api/users", map[string]interface{}{
		"name":         "Alice",
		"email":        "not-an-email",
		"pendingTasks": []string{"xyz"},
	})

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	env := decodeEnvelope(suite.T(), w)
	assert.Contains(suite.T(), env.Message, `"email" must be a valid email`)
	assert.Contains(suite.T(), env.Message, `"pendingTasks[0]" must be a valid id`)
}

// TestCreateUser_Conflicts tests duplicate emails and ineligible pending tasks
func (suite *UserHandlerTestSuite) TestCreateUser_Conflicts() {
	suite.createTestUser(map[string]interface{}{"name": "Alice", "email": "a@x.com"})

	w := performRequest(suite.router, http.MethodPost, "/api/users", map[string]interface{}{
		"name":  "Alias",
		"email": "a@x.com",
	})
	assert.Equal(suite.T(), http.StatusConflict, w.Code)
	assert.Equal(suite.T(), "Email [a@x.com] already exists", decodeEnvelope(suite.T(), w).Message)

	done := suite.createTestTask("done", true)
	missing := primitive.NewObjectID().Hex()
	w = performRequest(suite.router, http.MethodPost, "/api/users", map[string]interface{}{
		"name":         "Bob",
		"email":        "b@x.com",
		"pendingTasks": []string{done.ID, missing},
	})
	assert.Equal(suite.T(), http.StatusConflict, w.Code)
	env := decodeEnvelope(suite.T(), w)
	assert.Equal(suite.T(), "CONFLICT", env.Code)
	assert.Contains(suite.T(), env.Message, done.ID)
	assert.Contains(suite.T(), env.Message, missing)

	var ids []string
	suite.Require().NoError(json.Unmarshal(env.Details, &ids))
	assert.ElementsMatch(suite.T(), []string{done.ID, missing}, ids)
}

// TestUpdateUser_Rename tests that a rename reaches assigned tasks
func (suite *UserHandlerTestSuite) TestUpdateUser_Rename() {
	task := suite.createTestTask("T1", false)
	user := suite.createTestUser(map[string]interface{}{
		"name":         "Alice",
		"email":        "a@x.com",
		"pendingTasks": []string{task.ID},
	})

	w := performRequest(suite.router, http.MethodPut, "/api/users/"+user.ID, map[string]interface{}{"name": "Alicia"})

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	var updated models.User
	suite.Require().NoError(json.Unmarshal(decodeEnvelope(suite.T(), w).Data, &updated))
	assert.Equal(suite.T(), "Alicia", updated.Name)
	assert.Equal(suite.T(), "a@x.com", updated.Email)
	assert.Equal(suite.T(), []string{task.ID}, updated.PendingTasks)

	w = performRequest(suite.router, http.MethodGet, "/api/tasks/"+task.ID+"?select="+url.QueryEscape(`{"assignedUserName":1}`), nil)
	var projected map[string]interface{}
	suite.Require().NoError(json.Unmarshal(decodeEnvelope(suite.T(), w).Data, &projected))
	assert.Equal(suite.T(), "Alicia", projected["assignedUserName"])
}

// TestDeleteUser_Success tests deletion and the cascade to tasks
func (suite *UserHandlerTestSuite) TestDeleteUser_Success() {
	task := suite.createTestTask("T1", false)
	user := suite.createTestUser(map[string]interface{}{
		"name":         "Alice",
		"email":        "a@x.com",
		"pendingTasks": []string{task.ID},
	})

	w := performRequest(suite.router, http.MethodDelete, "/api/users/"+user.ID, nil)
	assert.Equal(suite.T(), http.StatusNoContent, w.Code)

	w = performRequest(suite.router, http.MethodGet, "/api/users/"+user.ID, nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
	assert.Equal(suite.T(), fmt.Sprintf("User [%s] does not exist", user.ID), decodeEnvelope(suite.T(), w).Message)

	w = performRequest(suite.router, http.MethodGet, "/api/tasks/"+task.ID, nil)
	var stored models.Task
	suite.Require().NoError(json.Unmarshal(decodeEnvelope(suite.T(), w).Data, &stored))
	assert.Equal(suite.T(), "", stored.AssignedUser)
	assert.Equal(suite.T(), "unassigned", stored.AssignedUserName)
}

// TestListUsers_Success tests that user lists are unlimited by default
func (suite *UserHandlerTestSuite) TestListUsers_Success() {
	for i := 0; i < 3; i++ {
		suite.createTestUser(map[string]interface{}{
			"name":  fmt.Sprintf("user-%d", i),
			"email": fmt.Sprintf("u%d@x.com", i),
		})
	}

	w := performRequest(suite.router, http.MethodGet, "/api/users?sort="+url.QueryEscape(`{"name":-1}`), nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	env := decodeEnvelope(suite.T(), w)
	assert.Equal(suite.T(), "Get user list success", env.Message)
	var users []models.User
	suite.Require().NoError(json.Unmarshal(env.Data, &users))
	suite.Require().Len(users, 3)
	assert.Equal(suite.T(), "user-2", users[0].Name)

	w = performRequest(suite.router, http.MethodGet, "/api/users?count=true", nil)
	env = decodeEnvelope(suite.T(), w)
	assert.Equal(suite.T(), "Count user success", env.Message)
	assert.Equal(suite.T(), "3", string(env.Data))
}

// TestUserHandlerTestSuite runs the test suite
func TestUserHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(UserHandlerTestSuite))
}
