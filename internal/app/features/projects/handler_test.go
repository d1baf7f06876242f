package projects_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/taskhub/internal/app/features/projects"
	"github.com/dalemusser/taskhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*projects.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	h := projects.NewHandler(db, db.Client(), zap.NewNop())
	return h, testutil.NewFixtures(t, db)
}

func jsonBody(t *testing.T, body map[string]any) *bytes.Reader {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	return bytes.NewReader(raw)
}

func TestHandleCreate_OwnerIsCaller(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := f.CreateUser(ctx, "Alice", "alice@example.com")

	req := httptest.NewRequest("POST", "/api/projects", jsonBody(t, map[string]any{
		"name":        "Website redesign",
		"description": "Q3 refresh",
		"ownerId":     alice.ID.Hex(),
	}))
	req = testutil.WithIdentity(req, alice)
	rec := testutil.NewRecorder()

	h.HandleCreate(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusCreated)
	rec.AssertContains(t, "Website redesign")

	var created struct {
		Members []string `json:"members"`
		Owner   string   `json:"owner"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if created.Owner != alice.ID.Hex() {
		t.Errorf("owner: got %q, want %q", created.Owner, alice.ID.Hex())
	}
	if len(created.Members) != 1 || created.Members[0] != alice.ID.Hex() {
		t.Errorf("members: got %v, want just the owner", created.Members)
	}
}

func TestHandleCreate_RejectsForeignOwner(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := f.CreateUser(ctx, "Alice", "alice@example.com")
	bob := f.CreateUser(ctx, "Bob", "bob@example.com")

	req := httptest.NewRequest("POST", "/api/projects", jsonBody(t, map[string]any{
		"name":    "Sneaky",
		"ownerId": bob.ID.Hex(),
	}))
	req = testutil.WithIdentity(req, alice)
	rec := testutil.NewRecorder()

	h.HandleCreate(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusForbidden)
}

func TestHandleList_OwnProjectsOnly(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := f.CreateUser(ctx, "Alice", "alice@example.com")
	bob := f.CreateUser(ctx, "Bob", "bob@example.com")
	f.CreateProject(ctx, "Alpha", alice.ID)
	f.CreateProject(ctx, "Beta", bob.ID)

	req := httptest.NewRequest("GET", "/api/projects/"+alice.ID.Hex(), nil)
	req = testutil.WithIdentity(req, alice)
	req = testutil.WithChiURLParam(req, "userID", alice.ID.Hex())
	rec := testutil.NewRecorder()

	h.HandleList(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Alpha")
	if bytes.Contains(rec.Body.Bytes(), []byte("Beta")) {
		t.Error("listing must not include projects the caller is not a member of")
	}
}

func TestHandleList_RejectsOtherUsersList(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := f.CreateUser(ctx, "Alice", "alice@example.com")
	bob := f.CreateUser(ctx, "Bob", "bob@example.com")

	req := httptest.NewRequest("GET", "/api/projects/"+bob.ID.Hex(), nil)
	req = testutil.WithIdentity(req, alice)
	req = testutil.WithChiURLParam(req, "userID", bob.ID.Hex())
	rec := testutil.NewRecorder()

	h.HandleList(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusForbidden)
}

func TestHandleInvite_AddsMember(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := f.CreateUser(ctx, "Alice", "alice@example.com")
	bob := f.CreateUser(ctx, "Bob", "bob@example.com")
	project := f.CreateProject(ctx, "Alpha", alice.ID)

	req := httptest.NewRequest("POST", "/api/projects/"+project.ID.Hex()+"/invite", jsonBody(t, map[string]any{
		"email": "bob@example.com",
	}))
	req = testutil.WithIdentity(req, alice)
	req = testutil.WithChiURLParam(req, "projectID", project.ID.Hex())
	rec := testutil.NewRecorder()

	h.HandleInvite(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "User added to project successfully!")

	got, err := h.Projects.GetByID(ctx, project.ID)
	if err != nil {
		t.Fatalf("failed to reload project: %v", err)
	}
	if !got.HasMember(bob.ID) {
		t.Error("invitee should be in the membership set")
	}
}

func TestHandleInvite_UnregisteredEmail(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := f.CreateUser(ctx, "Alice", "alice@example.com")
	project := f.CreateProject(ctx, "Alpha", alice.ID)

	req := httptest.NewRequest("POST", "/api/projects/"+project.ID.Hex()+"/invite", jsonBody(t, map[string]any{
		"email": "ghost@example.com",
	}))
	req = testutil.WithIdentity(req, alice)
	req = testutil.WithChiURLParam(req, "projectID", project.ID.Hex())
	rec := testutil.NewRecorder()

	h.HandleInvite(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertContains(t, "Tell them to register first!")
}

func TestHandleInvite_AlreadyMember(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := f.CreateUser(ctx, "Alice", "alice@example.com")
	project := f.CreateProject(ctx, "Alpha", alice.ID)

	req := httptest.NewRequest("POST", "/api/projects/"+project.ID.Hex()+"/invite", jsonBody(t, map[string]any{
		"email": "alice@example.com",
	}))
	req = testutil.WithIdentity(req, alice)
	req = testutil.WithChiURLParam(req, "projectID", project.ID.Hex())
	rec := testutil.NewRecorder()

	h.HandleInvite(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "User is already a member of this project")
}

func TestHandleInvite_NonMemberCaller(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := f.CreateUser(ctx, "Alice", "alice@example.com")
	mallory := f.CreateUser(ctx, "Mallory", "mallory@example.com")
	project := f.CreateProject(ctx, "Alpha", alice.ID)

	req := httptest.NewRequest("POST", "/api/projects/"+project.ID.Hex()+"/invite", jsonBody(t, map[string]any{
		"email": "mallory@example.com",
	}))
	req = testutil.WithIdentity(req, mallory)
	req = testutil.WithChiURLParam(req, "projectID", project.ID.Hex())
	rec := testutil.NewRecorder()

	h.HandleInvite(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusForbidden)
}

func TestHandleDelete_CascadesToTasks(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := f.CreateUser(ctx, "Alice", "alice@example.com")
	project := f.CreateProject(ctx, "Alpha", alice.ID)
	other := f.CreateProject(ctx, "Beta", alice.ID)
	f.CreateTask(ctx, "Doomed one", project.ID)
	f.CreateTask(ctx, "Doomed two", project.ID)
	survivor := f.CreateTask(ctx, "Survivor", other.ID)

	req := httptest.NewRequest("DELETE", "/api/projects/"+project.ID.Hex(), nil)
	req = testutil.WithIdentity(req, alice)
	req = testutil.WithChiURLParam(req, "projectID", project.ID.Hex())
	rec := testutil.NewRecorder()

	h.HandleDelete(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Project deleted")

	count, err := f.DB().Collection("tasks").CountDocuments(ctx, bson.M{"project_id": project.ID})
	if err != nil {
		t.Fatalf("failed to count tasks: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no tasks left for the deleted project, found %d", count)
	}

	left, err := f.DB().Collection("tasks").CountDocuments(ctx, bson.M{"_id": survivor.ID})
	if err != nil {
		t.Fatalf("failed to count surviving task: %v", err)
	}
	if left != 1 {
		t.Error("tasks under other projects must survive the cascade")
	}
}
