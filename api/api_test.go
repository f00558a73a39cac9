package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/database"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/models"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/realtime"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/services"
)

const (
	testSecret = "test-secret"
	testOrigin = "https://app.example.com"
)

type testAPI struct {
	t       *testing.T
	store   *database.Memory
	hub     *realtime.Hub
	market  *services.Marketplace
	handler http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := database.NewMemory()
	hub := realtime.NewHub()
	t.Cleanup(func() { hub.Close() })

	market := services.NewMarketplace(store, services.WithPublisher(hub))
	c := map[string]string{
		"JWT_SECRET":       testSecret,
		"ACCEPTED_ORIGINS": testOrigin,
	}
	return &testAPI{
		t:       t,
		store:   store,
		hub:     hub,
		market:  market,
		handler: newRouter(Dependencies{Market: market, Events: hub}, withConfig(c), withStartupTime(time.Now())),
	}
}

func signToken(t *testing.T, secret string, userID uuid.UUID, role string, expiresIn time.Duration) string {
	t.Helper()
	claims := sessionClaims{
		Email:        userID.String()[:8] + "@example.com",
		UserMetadata: map[string]any{"user_type": role},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

type testUser struct {
	id    uuid.UUID
	token string
}

// signup creates a user with a profile through the API.
func (a *testAPI) signup(role models.Role, name string) testUser {
	a.t.Helper()
	u := testUser{id: uuid.New()}
	u.token = signToken(a.t, testSecret, u.id, string(role), time.Hour)
	rec := a.do(http.MethodPut, "/profile", u.token, map[string]any{"full_name": name})
	if rec.Code != http.StatusOK {
		a.t.Fatalf("signup %s: %d %s", name, rec.Code, rec.Body.String())
	}
	return u
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			a.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func (a *testAPI) postJob(client testUser) models.Job {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/jobs", client.token, map[string]any{
		"title":           "Build API",
		"description":     "REST backend in Go",
		"category":        "development",
		"skills_required": []string{"go"},
		"budget_min":      20,
		"budget_max":      40,
		"budget_type":     "hourly",
	})
	if rec.Code != http.StatusCreated {
		a.t.Fatalf("create job: %d %s", rec.Code, rec.Body.String())
	}
	return decode[models.Job](a.t, rec)
}

func (a *testAPI) applyTo(freelancer testUser, job models.Job) models.Application {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/jobs/"+job.ID.String()+"/applications", freelancer.token, map[string]any{
		"cover_letter":  "I have done this before",
		"proposed_rate": 35,
	})
	if rec.Code != http.StatusCreated {
		a.t.Fatalf("apply: %d %s", rec.Code, rec.Body.String())
	}
	return decode[models.Application](a.t, rec)
}

func TestHealthNeedsNoToken(t *testing.T) {
	a := newTestAPI(t)
	rec := a.do(http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decode[HealthResponse](t, rec); got.Status != "ok" {
		t.Fatalf("health = %+v", got)
	}
}

func TestAuthentication(t *testing.T) {
	a := newTestAPI(t)
	userID := uuid.New()

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: userID.String(),
	}).SignedString([]byte(testSecret))
	badSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "not-a-uuid",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))

	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"garbage", "abc.def.ghi"},
		{"wrong secret", signToken(t, "other-secret", userID, "client", time.Hour)},
		{"expired", signToken(t, testSecret, userID, "client", -time.Minute)},
		{"alg none", none},
		{"no expiry", noExpiry},
		{"subject not uuid", badSubject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(http.MethodGet, "/jobs", tt.token, nil)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}
			if got := decode[ErrorResponse](t, rec); got.Field != "authorization" {
				t.Fatalf("error = %+v", got)
			}
		})
	}

	rec := a.do(http.MethodGet, "/jobs", signToken(t, testSecret, userID, "client", time.Hour), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: %d %s", rec.Code, rec.Body.String())
	}
}

func TestAccessTokenQueryParameter(t *testing.T) {
	a := newTestAPI(t)
	client := a.signup(models.RoleClient, "cleo")

	req := httptest.NewRequest(http.MethodGet, "/profile?access_token="+client.token, nil)
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d %s", rec.Code, rec.Body.String())
	}
	if got := decode[models.Profile](t, rec); got.ID != client.id || got.Role != models.RoleClient {
		t.Fatalf("profile = %+v", got)
	}
}

func TestStoredRoleOverridesTokenClaim(t *testing.T) {
	a := newTestAPI(t)
	freelancer := a.signup(models.RoleFreelancer, "fran")

	// Same user, token now claims client: the stored profile role still applies.
	token := signToken(t, testSecret, freelancer.id, "client", time.Hour)
	rec := a.do(http.MethodPost, "/jobs", token, map[string]any{
		"title": "x", "description": "y", "category": "z",
		"budget_min": 1, "budget_max": 2, "budget_type": "fixed",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d %s", rec.Code, rec.Body.String())
	}
}

func TestAcceptApplicationOverHTTP(t *testing.T) {
	a := newTestAPI(t)
	client := a.signup(models.RoleClient, "cleo")
	freelancer := a.signup(models.RoleFreelancer, "fran")
	job := a.postJob(client)
	application := a.applyTo(freelancer, job)

	// Only the owner of the job may review.
	rec := a.do(http.MethodPut, "/applications/"+application.ID.String()+"/status", freelancer.token, StatusUpdateRequest{Status: models.ReviewAccepted})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("freelancer review: %d %s", rec.Code, rec.Body.String())
	}

	rec = a.do(http.MethodPut, "/applications/"+application.ID.String()+"/status", client.token, StatusUpdateRequest{Status: models.ReviewAccepted})
	if rec.Code != http.StatusOK {
		t.Fatalf("accept: %d %s", rec.Code, rec.Body.String())
	}
	result := decode[services.ReviewResult](t, rec)
	if !result.Changed || result.ContractID == nil || result.ContractExisted {
		t.Fatalf("result = %+v", result)
	}

	again := decode[services.ReviewResult](t, a.do(http.MethodPut, "/applications/"+application.ID.String()+"/status", client.token, StatusUpdateRequest{Status: models.ReviewAccepted}))
	if again.Changed || !again.ContractExisted || *again.ContractID != *result.ContractID {
		t.Fatalf("repeat accept = %+v", again)
	}

	if got := decode[models.Job](t, a.do(http.MethodGet, "/jobs/"+job.ID.String(), client.token, nil)); got.Status != models.JobStatusInProgress {
		t.Fatalf("job status = %s", got.Status)
	}

	contractPath := "/contracts/" + result.ContractID.String()
	overview := decode[services.ContractOverview](t, a.do(http.MethodGet, contractPath, freelancer.token, nil))
	if overview.Contract.Rate != 35 || len(overview.Messages) != 1 || overview.UnreadCount != 1 {
		t.Fatalf("overview = %+v", overview)
	}
	if overview.Messages[0].SenderID != client.id {
		t.Fatalf("seed message sender = %s", overview.Messages[0].SenderID)
	}

	rec = a.do(http.MethodPost, contractPath+"/messages", freelancer.token, SendMessageRequest{Message: "Thanks, starting today"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("send: %d %s", rec.Code, rec.Body.String())
	}

	if got := decode[CountResponse](t, a.do(http.MethodPost, contractPath+"/messages/read", freelancer.token, nil)); got.Count != 1 {
		t.Fatalf("freelancer marked %d read", got.Count)
	}
	if got := decode[CountResponse](t, a.do(http.MethodGet, contractPath+"/messages/unread", client.token, nil)); got.Count != 1 {
		t.Fatalf("client unread = %d", got.Count)
	}

	outsider := a.signup(models.RoleFreelancer, "otto")
	if rec := a.do(http.MethodGet, contractPath+"/messages", outsider.token, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("outsider read thread: %d", rec.Code)
	}
}

func TestInquiryOverHTTP(t *testing.T) {
	a := newTestAPI(t)
	client := a.signup(models.RoleClient, "cleo")
	freelancer := a.signup(models.RoleFreelancer, "fran")

	rec := a.do(http.MethodPost, "/inquiries", client.token, CreateInquiryRequest{FreelancerID: freelancer.id, ProjectDescription: "Landing page"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create inquiry: %d %s", rec.Code, rec.Body.String())
	}
	inquiry := decode[models.ProjectInquiry](t, rec)

	listed := decode[[]models.InquiryView](t, a.do(http.MethodGet, "/inquiries", freelancer.token, nil))
	if len(listed) != 1 || listed[0].ClientName != "cleo" {
		t.Fatalf("inquiries = %+v", listed)
	}

	rec = a.do(http.MethodPut, "/inquiries/"+inquiry.ID.String()+"/status", freelancer.token, StatusUpdateRequest{Status: models.ReviewAccepted})
	if rec.Code != http.StatusOK {
		t.Fatalf("accept inquiry: %d %s", rec.Code, rec.Body.String())
	}
	result := decode[services.InquiryResult](t, rec)
	if result.Contract == nil || result.Contract.JobID != nil || result.Contract.ClientID != client.id {
		t.Fatalf("result = %+v", result)
	}
}

func TestBadRequests(t *testing.T) {
	a := newTestAPI(t)
	client := a.signup(models.RoleClient, "cleo")

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		field  string
	}{
		{"bad uuid", http.MethodGet, "/jobs/not-a-uuid", "", http.StatusBadRequest, "jobID"},
		{"bad json", http.MethodPost, "/jobs", "{", http.StatusBadRequest, "json"},
		{"bad status filter", http.MethodGet, "/jobs?status=paused", "", http.StatusBadRequest, "status"},
		{"bad limit", http.MethodGet, "/jobs?limit=-1", "", http.StatusBadRequest, "limit"},
		{"unknown job", http.MethodGet, "/jobs/" + uuid.NewString(), "", http.StatusNotFound, ""},
		{"bad topic", http.MethodGet, "/contracts/" + uuid.NewString() + "/events?topics=jobs", "", http.StatusBadRequest, "topics"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Authorization", "Bearer "+client.token)
			rec := httptest.NewRecorder()
			a.handler.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}
			if got := decode[ErrorResponse](t, rec); got.Field != tt.field || got.Status != "error" {
				t.Fatalf("error = %+v", got)
			}
		})
	}
}

func TestAdminRoutes(t *testing.T) {
	a := newTestAPI(t)
	root := a.signup(models.RoleClient, "root")
	member := a.signup(models.RoleFreelancer, "fran")
	if err := a.store.Admins().Grant(context.Background(), &models.AdminAccess{UserID: root.id}); err != nil {
		t.Fatal(err)
	}

	if got := decode[AdminAccessResponse](t, a.do(http.MethodGet, "/admin/access", member.token, nil)); got.IsAdmin {
		t.Fatalf("member reported as admin")
	}
	if rec := a.do(http.MethodGet, "/admin/profiles", member.token, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("member listing: %d", rec.Code)
	}

	rec := a.do(http.MethodPost, "/admin/access", root.token, GrantAdminRequest{UserID: member.id})
	if rec.Code != http.StatusCreated {
		t.Fatalf("grant: %d %s", rec.Code, rec.Body.String())
	}
	profiles := decode[[]models.Profile](t, a.do(http.MethodGet, "/admin/profiles", member.token, nil))
	if len(profiles) != 2 {
		t.Fatalf("profiles = %d", len(profiles))
	}
}

func TestCORS(t *testing.T) {
	a := newTestAPI(t)

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/jobs", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
		rec := httptest.NewRecorder()
		a.handler.ServeHTTP(rec, req)
		return rec
	}

	rec := preflight(testOrigin)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != testOrigin {
		t.Fatalf("allowed origin header = %q (status %d)", got, rec.Code)
	}

	rec = preflight("https://evil.example.com")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("blocked preflight status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("blocked origin received CORS headers")
	}
}

func TestContractEventStream(t *testing.T) {
	a := newTestAPI(t)
	client := a.signup(models.RoleClient, "cleo")
	freelancer := a.signup(models.RoleFreelancer, "fran")
	job := a.postJob(client)
	application := a.applyTo(freelancer, job)
	result := decode[services.ReviewResult](t, a.do(http.MethodPut, "/applications/"+application.ID.String()+"/status", client.token, StatusUpdateRequest{Status: models.ReviewAccepted}))
	contractID := *result.ContractID

	server := httptest.NewServer(a.handler)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/contracts/"+contractID.String()+"/events?topics=chat_messages&access_token="+freelancer.token, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream") {
		t.Fatalf("stream response = %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	reader := bufio.NewReader(resp.Body)
	if line, err := reader.ReadString('\n'); err != nil || line != ": connected\n" {
		t.Fatalf("first line = %q, %v", line, err)
	}

	clientActor := services.Actor{UserID: client.id, Role: models.RoleClient}
	message, err := a.market.SendMessage(context.Background(), clientActor, contractID, "Kickoff at noon?", nil)
	if err != nil {
		t.Fatal(err)
	}

	var eventName, data string
	for data == "" {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		line = strings.TrimSuffix(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			eventName = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
	if eventName != realtime.TopicChatMessages {
		t.Fatalf("event = %q", eventName)
	}
	var event realtime.Event
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		t.Fatal(err)
	}
	if event.RecordID != message.ID.String() || event.Keys["contract_id"] != contractID.String() {
		t.Fatalf("event = %+v", event)
	}
}

func TestContractEventStreamRejectsOutsiders(t *testing.T) {
	a := newTestAPI(t)
	client := a.signup(models.RoleClient, "cleo")
	freelancer := a.signup(models.RoleFreelancer, "fran")
	outsider := a.signup(models.RoleFreelancer, "otto")
	application := a.applyTo(freelancer, a.postJob(client))
	result := decode[services.ReviewResult](t, a.do(http.MethodPut, "/applications/"+application.ID.String()+"/status", client.token, StatusUpdateRequest{Status: models.ReviewAccepted}))

	rec := a.do(http.MethodGet, "/contracts/"+result.ContractID.String()+"/events", outsider.token, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d %s", rec.Code, rec.Body.String())
	}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "text/event-stream") {
		t.Fatalf("stream opened for outsider")
	}
}
