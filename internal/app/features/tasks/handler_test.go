package tasks_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/taskhub/internal/app/features/tasks"
	"github.com/dalemusser/taskhub/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*tasks.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return tasks.NewHandler(db, zap.NewNop()), testutil.NewFixtures(t, db)
}

func jsonBody(t *testing.T, body map[string]any) *bytes.Reader {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	return bytes.NewReader(raw)
}

type taskResponse struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Status     string `json:"status"`
	Project    string `json:"project"`
	AssignedTo *struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"assignedTo"`
	Comments []struct {
		User string `json:"user"`
		Text string `json:"text"`
	} `json:"comments"`
}

func parseTask(t *testing.T, raw []byte) taskResponse {
	t.Helper()
	var resp taskResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatalf("failed to parse task response: %v", err)
	}
	return resp
}

func TestHandleCreate_DefaultsToTodo(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := f.CreateUser(ctx, "Alice", "alice@example.com")
	project := f.CreateProject(ctx, "Alpha", alice.ID)

	req := httptest.NewRequest("POST", "/api/tasks", jsonBody(t, map[string]any{
		"title":       "Write docs",
		"description": "API reference",
		"project":     project.ID.Hex(),
	}))
	req = testutil.WithIdentity(req, alice)
	rec := testutil.NewRecorder()

	h.HandleCreate(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusCreated)

	created := parseTask(t, rec.Body.Bytes())
	if created.Status != "Todo" {
		t.Errorf("status: got %q, want %q", created.Status, "Todo")
	}
	if created.AssignedTo != nil {
		t.Error("new tasks start unassigned")
	}
	if created.Comments == nil || len(created.Comments) != 0 {
		t.Error("new tasks start with an empty comment list, never null")
	}
}

func TestHandleCreate_MissingTitle(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := f.CreateUser(ctx, "Alice", "alice@example.com")
	project := f.CreateProject(ctx, "Alpha", alice.ID)

	req := httptest.NewRequest("POST", "/api/tasks", jsonBody(t, map[string]any{
		"project": project.ID.Hex(),
	}))
	req = testutil.WithIdentity(req, alice)
	rec := testutil.NewRecorder()

	h.HandleCreate(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestHandleCreate_NonMember(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := f.CreateUser(ctx, "Alice", "alice@example.com")
	mallory := f.CreateUser(ctx, "Mallory", "mallory@example.com")
	project := f.CreateProject(ctx, "Alpha", alice.ID)

	req := httptest.NewRequest("POST", "/api/tasks", jsonBody(t, map[string]any{
		"title":   "Sneaky task",
		"project": project.ID.Hex(),
	}))
	req = testutil.WithIdentity(req, mallory)
	rec := testutil.NewRecorder()

	h.HandleCreate(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusForbidden)
}

func TestHandleListByProject_ResolvesAssignees(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := f.CreateUser(ctx, "Alice", "alice@example.com")
	project := f.CreateProject(ctx, "Alpha", alice.ID)
	task := f.CreateTask(ctx, "Assigned one", project.ID)
	f.CreateTask(ctx, "Unassigned one", project.ID)

	if _, err := h.Tasks.Assign(ctx, task.ID, &alice.ID); err != nil {
		t.Fatalf("failed to assign task: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/tasks/"+project.ID.Hex(), nil)
	req = testutil.WithIdentity(req, alice)
	req = testutil.WithChiURLParam(req, "projectID", project.ID.Hex())
	rec := testutil.NewRecorder()

	h.HandleListByProject(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)

	var list []taskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("failed to parse list response: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(list))
	}
	for _, got := range list {
		switch got.Title {
		case "Assigned one":
			if got.AssignedTo == nil || got.AssignedTo.Name != "Alice" {
				t.Errorf("assignee not resolved: %+v", got.AssignedTo)
			}
		case "Unassigned one":
			if got.AssignedTo != nil {
				t.Errorf("unassigned task has assignee: %+v", got.AssignedTo)
			}
		default:
			t.Errorf("unexpected task %q in listing", got.Title)
		}
	}
}

func TestHandleSetStatus(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := f.CreateUser(ctx, "Alice", "alice@example.com")
	project := f.CreateProject(ctx, "Alpha", alice.ID)
	task := f.CreateTask(ctx, "Move me", project.ID)

	req := httptest.NewRequest("PATCH", "/api/tasks/"+task.ID.Hex(), jsonBody(t, map[string]any{
		"status": "In Progress",
	}))
	req = testutil.WithIdentity(req, alice)
	req = testutil.WithChiURLParam(req, "taskID", task.ID.Hex())
	rec := testutil.NewRecorder()

	h.HandleSetStatus(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)
	got := parseTask(t, rec.Body.Bytes())
	if got.Status != "In Progress" {
		t.Errorf("status: got %q, want %q", got.Status, "In Progress")
	}
}

func TestHandleSetStatus_RejectsUnknownStatus(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := f.CreateUser(ctx, "Alice", "alice@example.com")
	project := f.CreateProject(ctx, "Alpha", alice.ID)
	task := f.CreateTask(ctx, "Move me", project.ID)

	req := httptest.NewRequest("PATCH", "/api/tasks/"+task.ID.Hex(), jsonBody(t, map[string]any{
		"status": "Archived",
	}))
	req = testutil.WithIdentity(req, alice)
	req = testutil.WithChiURLParam(req, "taskID", task.ID.Hex())
	rec := testutil.NewRecorder()

	h.HandleSetStatus(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestHandleSetStatus_TaskNotFound(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := f.CreateUser(ctx, "Alice", "alice@example.com")

	req := httptest.NewRequest("PATCH", "/api/tasks/64b000000000000000000000", jsonBody(t, map[string]any{
		"status": "Done",
	}))
	req = testutil.WithIdentity(req, alice)
	req = testutil.WithChiURLParam(req, "taskID", "64b000000000000000000000")
	rec := testutil.NewRecorder()

	h.HandleSetStatus(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusNotFound)
}

func TestHandleAssign_SetAndClear(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := f.CreateUser(ctx, "Alice", "alice@example.com")
	project := f.CreateProject(ctx, "Alpha", alice.ID)
	task := f.CreateTask(ctx, "Claim me", project.ID)

	req := httptest.NewRequest("PATCH", "/api/tasks/"+task.ID.Hex()+"/assign", jsonBody(t, map[string]any{
		"userId": alice.ID.Hex(),
	}))
	req = testutil.WithIdentity(req, alice)
	req = testutil.WithChiURLParam(req, "taskID", task.ID.Hex())
	rec := testutil.NewRecorder()

	h.HandleAssign(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)
	got := parseTask(t, rec.Body.Bytes())
	if got.AssignedTo == nil || got.AssignedTo.ID != alice.ID.Hex() || got.AssignedTo.Name != "Alice" {
		t.Fatalf("assignee: got %+v, want Alice", got.AssignedTo)
	}

	req = httptest.NewRequest("PATCH", "/api/tasks/"+task.ID.Hex()+"/assign", jsonBody(t, map[string]any{
		"userId": nil,
	}))
	req = testutil.WithIdentity(req, alice)
	req = testutil.WithChiURLParam(req, "taskID", task.ID.Hex())
	rec = testutil.NewRecorder()

	h.HandleAssign(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)
	got = parseTask(t, rec.Body.Bytes())
	if got.AssignedTo != nil {
		t.Errorf("expected assignment cleared, got %+v", got.AssignedTo)
	}
}

func TestHandleComment_AppendsInOrder(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := f.CreateUser(ctx, "Alice", "alice@example.com")
	project := f.CreateProject(ctx, "Alpha", alice.ID)
	task := f.CreateTask(ctx, "Discuss me", project.ID)

	comment := func(text string) taskResponse {
		req := httptest.NewRequest("POST", "/api/tasks/"+task.ID.Hex()+"/comment", jsonBody(t, map[string]any{
			"user": "Alice",
			"text": text,
		}))
		req = testutil.WithIdentity(req, alice)
		req = testutil.WithChiURLParam(req, "taskID", task.ID.Hex())
		rec := testutil.NewRecorder()
		h.HandleComment(rec.ResponseRecorder, req)
		rec.AssertStatus(t, http.StatusOK)
		return parseTask(t, rec.Body.Bytes())
	}

	comment("first")
	got := comment("second")

	if len(got.Comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(got.Comments))
	}
	if got.Comments[0].Text != "first" || got.Comments[1].Text != "second" {
		t.Errorf("comments out of order: %+v", got.Comments)
	}
}

func TestHandleComment_EmptyText(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := f.CreateUser(ctx, "Alice", "alice@example.com")
	project := f.CreateProject(ctx, "Alpha", alice.ID)
	task := f.CreateTask(ctx, "Discuss me", project.ID)

	req := httptest.NewRequest("POST", "/api/tasks/"+task.ID.Hex()+"/comment", jsonBody(t, map[string]any{
		"user": "Alice",
		"text": "",
	}))
	req = testutil.WithIdentity(req, alice)
	req = testutil.WithChiURLParam(req, "taskID", task.ID.Hex())
	rec := testutil.NewRecorder()

	h.HandleComment(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusBadRequest)
}
