package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-user-api/internal/constants"
	"github.com/yukikurage/task-user-api/internal/database"
	"github.com/yukikurage/task-user-api/internal/logger"
	"github.com/yukikurage/task-user-api/internal/repository"
	"github.com/yukikurage/task-user-api/internal/services"
	"github.com/yukikurage/task-user-api/internal/validation"
	"gorm.io/driver/sqlite"
)

// envelope mirrors the response body of every endpoint
type envelope struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Details json.RawMessage `json:"details"`
}

// newTestRouter wires the full router over an in-memory SQLite store
func newTestRouter(t *testing.T) (*gin.Engine, repository.Store) {
	gin.SetMode(gin.TestMode)
	log := logger.Discard()

	db, err := database.Open(sqlite.Open(":memory:"), log)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db, log); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store := repository.NewGormStore(db)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	validator := validation.New()
	tx := services.NewTransactor(store, log)
	router := NewRouter(log, store,
		NewTaskHandler(services.NewTaskService(store, tx, log, constants.DefaultTaskListLimit), validator, log),
		NewUserHandler(services.NewUserService(store, tx, log), validator, log),
	)
	return router, store
}

func performRequest(router *gin.Engine, method, url string, body interface{}) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		var raw []byte
		switch b := body.(type) {
		case string:
			raw = []byte(b)
		default:
			raw, _ = json.Marshal(b)
		}
		req = httptest.NewRequest(method, url, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return env
}
