package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/ManishKumarCs/Onboarding-Management-System-sub000/constants"
	"github.com/ManishKumarCs/Onboarding-Management-System-sub000/models"
	"github.com/ManishKumarCs/Onboarding-Management-System-sub000/notify"
	"github.com/ManishKumarCs/Onboarding-Management-System-sub000/routes"
	"github.com/ManishKumarCs/Onboarding-Management-System-sub000/services"
	"github.com/ManishKumarCs/Onboarding-Management-System-sub000/storage"
	"github.com/ManishKumarCs/Onboarding-Management-System-sub000/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB

	admin models.User
	mgr   models.User
	mem   models.User
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)

	if os.Getenv("JWT_SECRET") == "" {
		_ = os.Setenv("JWT_SECRET", "test-secret")
	}

	dsn := filepath.Join(t.TempDir(), "api.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.Task{}, &models.TaskUpdate{}, &models.TaskReview{},
		&models.TaskAttachment{}, &models.TaskAudit{}, &models.Notification{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	files, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("local store: %v", err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := services.NewTaskService(db, log, notify.NewDBNotifier(db, log), files)
	router := routes.SetupRouter(db, svc)

	admin := models.User{Name: "Admin", Email: "admin@example.com", Role: constants.RoleAdmin}
	mgr := models.User{Name: "Manager", Email: "manager@example.com", Role: constants.RoleManager}
	mem := models.User{Name: "Member", Email: "member@example.com", Role: constants.RoleMember}

	for _, u := range []*models.User{&admin, &mgr, &mem} {
		h, err := utils.HashPassword("pass1234")
		if err != nil {
			t.Fatalf("hash password: %v", err)
		}
		u.Password = h
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("seed user %s: %v", u.Email, err)
		}
	}

	return &testEnv{router: router, db: db, admin: admin, mgr: mgr, mem: mem}
}

func doRequest(t *testing.T, r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearerFor(t *testing.T, u models.User) string {
	t.Helper()
	tok, err := utils.GenerateJWT(u)
	if err != nil {
		t.Fatalf("generate jwt: %v", err)
	}
	return "Bearer " + tok
}

func decodeTask(t *testing.T, w *httptest.ResponseRecorder) models.Task {
	t.Helper()
	var task models.Task
	if err := json.Unmarshal(w.Body.Bytes(), &task); err != nil {
		t.Fatalf("unmarshal task: %v body=%s", err, w.Body.String())
	}
	return task
}

func TestAuth_RegisterAndLogin(t *testing.T) {
	env := setupTestEnv(t)

	regBody := map[string]any{
		"name":     "New User",
		"email":    "new@example.com",
		"password": "pass1234",
		"role":     "member",
	}

	w := doRequest(t, env.router, http.MethodPost, "/register", regBody, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("register status=%d body=%s", w.Code, w.Body.String())
	}

	loginBody := map[string]any{"email": "new@example.com", "password": "pass1234"}
	w = doRequest(t, env.router, http.MethodPost, "/login", loginBody, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login status=%d body=%s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal login resp: %v", err)
	}
	if resp["token"] == nil || resp["token"] == "" {
		t.Fatalf("expected token in response: %v", resp)
	}

	w = doRequest(t, env.router, http.MethodGet, "/tasks", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("GET /tasks without token expected 401 got=%d", w.Code)
	}
}

func TestUsers_AdminOnly(t *testing.T) {
	env := setupTestEnv(t)

	adminAuth := map[string]string{"Authorization": bearerFor(t, env.admin)}
	mgrAuth := map[string]string{"Authorization": bearerFor(t, env.mgr)}

	w := doRequest(t, env.router, http.MethodGet, "/users", nil, adminAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /users as admin status=%d body=%s", w.Code, w.Body.String())
	}

	w = doRequest(t, env.router, http.MethodGet, "/users", nil, mgrAuth)
	if w.Code != http.StatusForbidden {
		t.Fatalf("GET /users as manager expected 403 got=%d body=%s", w.Code, w.Body.String())
	}

	upd := map[string]any{"role": "manager"}
	w = doRequest(t, env.router, http.MethodPut, "/users/"+itoa(env.mem.ID), upd, adminAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("PUT /users/:id as admin status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestTasks_LifecycleOverHTTP(t *testing.T) {
	env := setupTestEnv(t)

	adminAuth := map[string]string{"Authorization": bearerFor(t, env.admin)}
	memAuth := map[string]string{"Authorization": bearerFor(t, env.mem)}

	create := map[string]any{
		"title":          "Complete security training",
		"description":    "Finish the mandatory modules",
		"assigned_to_id": env.mem.ID,
		"priority":       "high",
		"due_date":       time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	}

	// Members are not allowed to create tasks.
	w := doRequest(t, env.router, http.MethodPost, "/tasks", create, memAuth)
	if w.Code != http.StatusForbidden {
		t.Fatalf("POST /tasks as member expected 403 got=%d body=%s", w.Code, w.Body.String())
	}

	w = doRequest(t, env.router, http.MethodPost, "/tasks", create, adminAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /tasks status=%d body=%s", w.Code, w.Body.String())
	}
	created := decodeTask(t, w)
	if created.Status != constants.TaskStatusAssigned || created.Progress != 0 {
		t.Fatalf("created task status=%q progress=%d, want assigned/0", created.Status, created.Progress)
	}

	// Past due dates are rejected at creation.
	bad := map[string]any{
		"title":          "Backdated",
		"description":    "x",
		"assigned_to_id": env.mem.ID,
		"due_date":       time.Now().Add(-24 * time.Hour).Format(time.RFC3339),
	}
	w = doRequest(t, env.router, http.MethodPost, "/tasks", bad, adminAuth)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("POST /tasks with past due date expected 400 got=%d body=%s", w.Code, w.Body.String())
	}

	id := itoa(created.ID)

	// Only the assignee may report progress.
	w = doRequest(t, env.router, http.MethodPost, "/tasks/"+id+"/progress",
		map[string]any{"progress": 20}, adminAuth)
	if w.Code != http.StatusForbidden {
		t.Fatalf("progress as non-assignee expected 403 got=%d body=%s", w.Code, w.Body.String())
	}

	w = doRequest(t, env.router, http.MethodPost, "/tasks/"+id+"/progress",
		map[string]any{"progress": 40, "message": "started"}, memAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("progress 40 status=%d body=%s", w.Code, w.Body.String())
	}
	task := decodeTask(t, w)
	if task.Status != constants.TaskStatusInProgress || len(task.Updates) != 1 {
		t.Fatalf("after 40%%: status=%q updates=%d", task.Status, len(task.Updates))
	}

	w = doRequest(t, env.router, http.MethodPost, "/tasks/"+id+"/progress",
		map[string]any{"progress": 100, "message": "all done"}, memAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("progress 100 status=%d body=%s", w.Code, w.Body.String())
	}
	task = decodeTask(t, w)
	if task.Status != constants.TaskStatusReview || len(task.Updates) != 2 {
		t.Fatalf("after 100%%: status=%q updates=%d", task.Status, len(task.Updates))
	}

	// Reviewing is a manager/admin surface.
	w = doRequest(t, env.router, http.MethodPost, "/tasks/"+id+"/reviews",
		map[string]any{"feedback": "nice", "decision": "approve"}, memAuth)
	if w.Code != http.StatusForbidden {
		t.Fatalf("review as member expected 403 got=%d body=%s", w.Code, w.Body.String())
	}

	w = doRequest(t, env.router, http.MethodPost, "/tasks/"+id+"/reviews",
		map[string]any{"feedback": "well done", "rating": 5, "decision": "approve"}, adminAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("approve status=%d body=%s", w.Code, w.Body.String())
	}
	task = decodeTask(t, w)
	if task.Status != constants.TaskStatusCompleted || len(task.Reviews) != 1 {
		t.Fatalf("after approve: status=%q reviews=%d", task.Status, len(task.Reviews))
	}

	// Completed is terminal for both surfaces.
	w = doRequest(t, env.router, http.MethodPost, "/tasks/"+id+"/progress",
		map[string]any{"progress": 10}, memAuth)
	if w.Code != http.StatusConflict {
		t.Fatalf("progress on completed expected 409 got=%d body=%s", w.Code, w.Body.String())
	}
	w = doRequest(t, env.router, http.MethodPost, "/tasks/"+id+"/reviews",
		map[string]any{"feedback": "again", "decision": "approve"}, adminAuth)
	if w.Code != http.StatusConflict {
		t.Fatalf("second approve expected 409 got=%d body=%s", w.Code, w.Body.String())
	}

	// Admin reopen, then delete.
	w = doRequest(t, env.router, http.MethodPost, "/tasks/"+id+"/status",
		map[string]any{"status": "in_progress", "comment": "training module replaced"}, adminAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("reopen status=%d body=%s", w.Code, w.Body.String())
	}

	w = doRequest(t, env.router, http.MethodDelete, "/tasks/"+id, nil, memAuth)
	if w.Code != http.StatusForbidden {
		t.Fatalf("DELETE as member expected 403 got=%d body=%s", w.Code, w.Body.String())
	}
	w = doRequest(t, env.router, http.MethodDelete, "/tasks/"+id, nil, adminAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("DELETE as admin status=%d body=%s", w.Code, w.Body.String())
	}
	w = doRequest(t, env.router, http.MethodGet, "/tasks/"+id, nil, adminAuth)
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET deleted task expected 404 got=%d body=%s", w.Code, w.Body.String())
	}
}

func TestTasks_RejectFlowAndFilters(t *testing.T) {
	env := setupTestEnv(t)

	adminAuth := map[string]string{"Authorization": bearerFor(t, env.admin)}
	mgrAuth := map[string]string{"Authorization": bearerFor(t, env.mgr)}
	memAuth := map[string]string{"Authorization": bearerFor(t, env.mem)}

	// Put the member under the manager so the manager may review.
	w := doRequest(t, env.router, http.MethodPut, "/users/"+itoa(env.mem.ID),
		map[string]any{"manager_id": env.mgr.ID}, adminAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("set manager status=%d body=%s", w.Code, w.Body.String())
	}

	create := map[string]any{
		"title":          "Collect equipment",
		"description":    "Laptop and monitor",
		"assigned_to_id": env.mem.ID,
		"priority":       "urgent",
		"due_date":       time.Now().Add(48 * time.Hour).Format(time.RFC3339),
	}
	w = doRequest(t, env.router, http.MethodPost, "/tasks", create, mgrAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /tasks as manager status=%d body=%s", w.Code, w.Body.String())
	}
	created := decodeTask(t, w)
	id := itoa(created.ID)

	w = doRequest(t, env.router, http.MethodPost, "/tasks/"+id+"/progress",
		map[string]any{"progress": 100}, memAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("progress 100 status=%d body=%s", w.Code, w.Body.String())
	}

	w = doRequest(t, env.router, http.MethodPost, "/tasks/"+id+"/reviews",
		map[string]any{"feedback": "monitor missing", "decision": "reject", "reset_progress": 80}, mgrAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("reject status=%d body=%s", w.Code, w.Body.String())
	}
	task := decodeTask(t, w)
	if task.Status != constants.TaskStatusInProgress || task.Progress != 80 {
		t.Fatalf("after reject: status=%q progress=%d", task.Status, task.Progress)
	}

	// Second review while in_progress is an invalid state.
	w = doRequest(t, env.router, http.MethodPost, "/tasks/"+id+"/reviews",
		map[string]any{"feedback": "again", "decision": "approve"}, mgrAuth)
	if w.Code != http.StatusConflict {
		t.Fatalf("review while in_progress expected 409 got=%d body=%s", w.Code, w.Body.String())
	}

	// Filters are a conjunction.
	w = doRequest(t, env.router, http.MethodGet,
		"/tasks?assignee="+itoa(env.mem.ID)+"&priority=urgent&status=in_progress", nil, mgrAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /tasks filtered status=%d body=%s", w.Code, w.Body.String())
	}
	var listed []models.Task
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("filtered list=%v, want only task %d", listed, created.ID)
	}

	w = doRequest(t, env.router, http.MethodGet, "/tasks?status=half-done", nil, mgrAuth)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown status filter expected 400 got=%d body=%s", w.Code, w.Body.String())
	}
}

func TestTasks_AttachmentUpload(t *testing.T) {
	env := setupTestEnv(t)

	adminAuth := map[string]string{"Authorization": bearerFor(t, env.admin)}
	memAuth := bearerFor(t, env.mem)

	create := map[string]any{
		"title":          "Sign NDA",
		"description":    "Upload the signed copy",
		"assigned_to_id": env.mem.ID,
		"due_date":       time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	}
	w := doRequest(t, env.router, http.MethodPost, "/tasks", create, adminAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /tasks status=%d body=%s", w.Code, w.Body.String())
	}
	created := decodeTask(t, w)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "nda-signed.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("signed pdf bytes")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/tasks/"+itoa(created.ID)+"/attachments", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", memAuth)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("attachment upload status=%d body=%s", rec.Code, rec.Body.String())
	}
	task := decodeTask(t, rec)
	if len(task.Attachments) != 1 {
		t.Fatalf("%d attachments, want 1", len(task.Attachments))
	}
	if task.Attachments[0].FileName != "nda-signed.pdf" || task.Attachments[0].StorageRef == "" {
		t.Fatalf("attachment=%+v, want original name and opaque ref", task.Attachments[0])
	}
}

func TestNotifications_PollAndMarkRead(t *testing.T) {
	env := setupTestEnv(t)

	adminAuth := map[string]string{"Authorization": bearerFor(t, env.admin)}
	memAuth := map[string]string{"Authorization": bearerFor(t, env.mem)}

	create := map[string]any{
		"title":          "Meet your mentor",
		"description":    "Intro session",
		"assigned_to_id": env.mem.ID,
		"due_date":       time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	}
	w := doRequest(t, env.router, http.MethodPost, "/tasks", create, adminAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /tasks status=%d body=%s", w.Code, w.Body.String())
	}

	// Emission is fire-and-forget; poll until the row lands.
	var notifications []models.Notification
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		w = doRequest(t, env.router, http.MethodGet, "/notifications", nil, memAuth)
		if w.Code != http.StatusOK {
			t.Fatalf("GET /notifications status=%d body=%s", w.Code, w.Body.String())
		}
		notifications = nil
		if err := json.Unmarshal(w.Body.Bytes(), &notifications); err != nil {
			t.Fatalf("unmarshal notifications: %v", err)
		}
		if len(notifications) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if len(notifications) != 1 {
		t.Fatalf("%d notifications, want 1", len(notifications))
	}
	n := notifications[0]
	if n.Event != constants.EventAssigned || n.Read {
		t.Fatalf("notification=%+v, want unread %q event", n, constants.EventAssigned)
	}

	// Another user cannot mark it read.
	w = doRequest(t, env.router, http.MethodPost, "/notifications/"+itoa(n.ID)+"/read", nil, adminAuth)
	if w.Code != http.StatusForbidden {
		t.Fatalf("mark read as other user expected 403 got=%d body=%s", w.Code, w.Body.String())
	}

	w = doRequest(t, env.router, http.MethodPost, "/notifications/"+itoa(n.ID)+"/read", nil, memAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("mark read status=%d body=%s", w.Code, w.Body.String())
	}
	var updated models.Notification
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("unmarshal notification: %v", err)
	}
	if !updated.Read {
		t.Fatal("notification should be marked read")
	}
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
