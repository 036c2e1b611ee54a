package api

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SundayYogurt/member_service/internal/api/rest/middleware"
	"github.com/SundayYogurt/member_service/internal/events"
	"github.com/SundayYogurt/member_service/internal/helper"
	"github.com/SundayYogurt/member_service/internal/repository"
	"github.com/SundayYogurt/member_service/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type client struct {
	t      *testing.T
	app    *fiber.App
	cookie *http.Cookie
	mobile bool
	bearer string
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func (c *client) call(method, path string, body any) (int, envelope, *http.Response) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.mobile || c.bearer != "" {
		req.Header.Set(middleware.ClientTypeHeader, middleware.ClientTypeMobile)
	}
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}

	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)

	var env envelope
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(c.t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env, resp
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

type testServer struct {
	app      *fiber.App
	producer *testutil.RecordingProducer
	users    repository.UserRepository
}

func newTestServer(t *testing.T, rateLimit int) *testServer {
	t.Helper()
	db := testutil.NewDB(t)
	users := repository.NewUserRepository(db)
	require.NoError(t, SeedAdmin(users, "Admin@Example.org", "Administrator", zap.NewNop()))

	producer := &testutil.RecordingProducer{}
	app := NewApp(AppDeps{
		DB:           db,
		Auth:         helper.SetupAuth("e2e-secret"),
		Producer:     producer,
		Uploader:     &testutil.FakeUploader{URL: "https://cdn.example.org/p.jpg"},
		Log:          zap.NewNop(),
		AllowOrigins: "http://localhost:5173",
		RateLimitMax: rateLimit,
	})
	return &testServer{app: app, producer: producer, users: users}
}

func (s *testServer) client(t *testing.T) *client {
	return &client{t: t, app: s.app}
}

// mobileLogin sets the password of a verified account and returns a bearer client.
func (s *testServer) mobileLogin(t *testing.T, email, password string) *client {
	t.Helper()
	anon := s.client(t)
	status, env, _ := anon.call(http.MethodPost, "/api/auth/set-password", map[string]string{
		"email": email, "password": password, "security_question": "City of birth?", "security_answer": "Kochi",
	})
	require.Equal(t, http.StatusOK, status, env.Error)

	anon.mobile = true
	status, env, _ = anon.call(http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, status, env.Error)

	login := decode[struct {
		Token string `json:"token"`
	}](t, env.Data)
	require.NotEmpty(t, login.Token)
	return &client{t: t, app: s.app, mobile: true, bearer: login.Token}
}

func TestMemberLifecycle(t *testing.T) {
	srv := newTestServer(t, 1000)
	admin := srv.mobileLogin(t, "admin@example.org", "admin-password")
	anon := srv.client(t)

	// register
	status, env, _ := anon.call(http.MethodPost, "/api/auth/register", map[string]string{
		"email":          "asha@example.org",
		"name":           "Asha Rao",
		"designation":    "Assistant Engineer",
		"department":     "Irrigation",
		"work_district":  "North",
		"office_address": "2 Canal Street",
		"mobile_number":  "9876543210",
	})
	require.Equal(t, http.StatusCreated, status, env.Error)

	// cannot log in or set a password before verification
	status, _, _ = anon.call(http.MethodPost, "/api/auth/set-password", map[string]string{
		"email": "asha@example.org", "password": "member-pass", "security_question": "q", "security_answer": "a",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	// admin verifies; the admin itself holds membership id 1
	status, env, _ = admin.call(http.MethodPost, "/api/admin/table/verification", map[string]string{
		"email": "asha@example.org", "status": "VERIFIED",
	})
	require.Equal(t, http.StatusOK, status, env.Error)
	verified := decode[struct {
		MembershipID uint `json:"membership_id"`
	}](t, env.Data)
	assert.Equal(t, uint(2), verified.MembershipID)

	status, env, _ = admin.call(http.MethodPost, "/api/admin/table/verification", map[string]string{
		"email": "asha@example.org", "status": "VERIFIED",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "user already verified", env.Error)

	// web login sets the session cookie
	status, env, _ = anon.call(http.MethodPost, "/api/auth/set-password", map[string]string{
		"email": "asha@example.org", "password": "member-pass", "security_question": "First pet?", "security_answer": "Tiger",
	})
	require.Equal(t, http.StatusOK, status, env.Error)

	status, env, resp := anon.call(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "asha@example.org", "password": "member-pass",
	})
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.NotContains(t, string(env.Data), `"token"`)

	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == middleware.AccessTokenCookie {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)
	member := &client{t: t, app: srv.app, cookie: &http.Cookie{Name: session.Name, Value: session.Value}}

	status, env, _ = member.call(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.Contains(t, string(env.Data), `"email":"asha@example.org"`)

	// members cannot reach the admin api
	status, _, _ = member.call(http.MethodGet, "/api/admin/table", nil)
	assert.Equal(t, http.StatusForbidden, status)

	// transfer request, approved by the admin
	status, env, _ = member.call(http.MethodPost, "/api/user/request", map[string]string{
		"request_type": "TRANSFER", "new_work_district": "South", "new_office_address": "9 Harbour Road",
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	created := decode[struct {
		ID uint `json:"id"`
	}](t, env.Data)

	status, env, _ = member.call(http.MethodPost, "/api/user/request", map[string]string{
		"request_type": "PROMOTION", "new_position": "Executive Engineer",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "a pending request already exists", env.Error)

	status, env, _ = admin.call(http.MethodGet, "/api/admin/requests", nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.Contains(t, string(env.Data), `"request_type":"TRANSFER"`)

	status, env, _ = admin.call(http.MethodPatch, "/api/admin/requests", map[string]any{
		"request_id": created.ID, "status": "VERIFIED", "admin_comments": "approved",
	})
	require.Equal(t, http.StatusOK, status, env.Error)

	status, env, _ = member.call(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	me := decode[struct {
		WorkDistrict  string `json:"work_district"`
		OfficeAddress string `json:"office_address"`
	}](t, env.Data)
	assert.Equal(t, "South", me.WorkDistrict)
	assert.Equal(t, "9 Harbour Road", me.OfficeAddress)

	status, env, _ = member.call(http.MethodGet, "/api/user/request", nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.Contains(t, string(env.Data), `"status":"VERIFIED"`)

	// logout clears the cookie
	_, _, resp = member.call(http.MethodPost, "/api/auth/logout", nil)
	for _, c := range resp.Cookies() {
		if c.Name == middleware.AccessTokenCookie {
			assert.Empty(t, c.Value)
		}
	}

	assert.Contains(t, srv.producer.Keys(), events.TypeUserRegistered)
	assert.Contains(t, srv.producer.Keys(), events.TypeUserVerified)
	assert.Contains(t, srv.producer.Keys(), events.TypeRequestDecided)
}

func TestStaleTokenAfterRejection(t *testing.T) {
	srv := newTestServer(t, 1000)
	admin := srv.mobileLogin(t, "admin@example.org", "admin-password")

	// demoting the admin's verification makes the still-valid token useless
	u, err := srv.users.FindUserByEmail("admin@example.org")
	require.NoError(t, err)
	require.NoError(t, srv.users.UpdateFields(u.ID, map[string]any{"verification_status": "REJECTED"}))

	status, env, _ := admin.call(http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", env.Error)
}

func TestObituaryFlow(t *testing.T) {
	srv := newTestServer(t, 1000)
	admin := srv.mobileLogin(t, "admin@example.org", "admin-password")
	anon := srv.client(t)

	status, env, _ := admin.call(http.MethodPost, "/api/admin/obituaries", map[string]any{
		"membership_id": 1, "date_of_death": "2999-01-01",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "date of death cannot be in the future", env.Error)

	status, env, _ = admin.call(http.MethodPost, "/api/admin/obituaries", map[string]any{
		"membership_id": 404, "date_of_death": "2026-01-01",
	})
	assert.Equal(t, http.StatusNotFound, status, env.Error)

	status, env, _ = admin.call(http.MethodPost, "/api/admin/obituaries", map[string]any{
		"membership_id": 1, "date_of_death": "2026-01-01", "additional_note": "Founding secretary",
	})
	require.Equal(t, http.StatusCreated, status, env.Error)

	status, env, _ = anon.call(http.MethodGet, "/api/obituaries", nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	list := decode[[]struct {
		MembershipID uint   `json:"membership_id"`
		Name         string `json:"name"`
	}](t, env.Data)
	require.Len(t, list, 1)
	assert.Equal(t, "Administrator", list[0].Name)

	u, err := srv.users.FindUserByEmail("admin@example.org")
	require.NoError(t, err)
	assert.Equal(t, "EXPIRED", string(u.UserStatus))
}

func TestMobileLoginReturnsToken(t *testing.T) {
	srv := newTestServer(t, 1000)
	admin := srv.mobileLogin(t, "admin@example.org", "admin-password")

	status, env, _ := admin.call(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.Contains(t, string(env.Data), `"user_role":"ADMIN"`)

	// the token itself is channel agnostic
	web := &client{t: t, app: srv.app, cookie: &http.Cookie{Name: middleware.AccessTokenCookie, Value: admin.bearer}}
	status, _, _ = web.call(http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestValidationErrors(t *testing.T) {
	srv := newTestServer(t, 1000)
	anon := srv.client(t)

	status, env, _ := anon.call(http.MethodPost, "/api/auth/register", map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "email must be a valid email", env.Error)

	status, env, _ = anon.call(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "nobody@example.org", "password": "whatever",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "invalid email or password", env.Error)

	status, _, _ = anon.call(http.MethodPost, "/api/auth/check-user", map[string]string{"email": "nobody@example.org"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPageGateThroughApp(t *testing.T) {
	srv := newTestServer(t, 1000)
	anon := srv.client(t)

	status, _, resp := anon.call(http.MethodGet, "/news-letter", nil)
	assert.Equal(t, http.StatusFound, status)
	assert.Equal(t, "/login?return=%2Fnews-letter", resp.Header.Get("Location"))

	admin := srv.mobileLogin(t, "admin@example.org", "admin-password")
	status, _, _ = admin.call(http.MethodGet, "/admin", nil)
	assert.Equal(t, http.StatusOK, status)

	status, _, _ = anon.call(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestAPIRateLimit(t *testing.T) {
	srv := newTestServer(t, 0)
	anon := srv.client(t)

	for i := 0; i < middleware.DefaultRateLimitMax; i++ {
		status, _, _ := anon.call(http.MethodGet, "/api/obituaries", nil)
		require.Equal(t, http.StatusOK, status, "request %d", i+1)
	}
	status, env, _ := anon.call(http.MethodGet, "/api/obituaries", nil)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "too many requests", env.Error)

	// pages and health are outside /api
	status, _, _ = anon.call(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestPhotoUpload(t *testing.T) {
	srv := newTestServer(t, 1000)
	admin := srv.mobileLogin(t, "admin@example.org", "admin-password")

	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	var pngBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, img))

	upload := func(filename string, data []byte) (int, envelope) {
		var body bytes.Buffer
		w := multipart.NewWriter(&body)
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/user/photo", &body)
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set(middleware.ClientTypeHeader, middleware.ClientTypeMobile)
		req.Header.Set("Authorization", "Bearer "+admin.bearer)
		resp, err := srv.app.Test(req, -1)
		require.NoError(t, err)

		var env envelope
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
		return resp.StatusCode, env
	}

	status, env := upload("me.png", pngBuf.Bytes())
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.Contains(t, string(env.Data), `"photo_url":"https://cdn.example.org/p.jpg"`)

	status, env = upload("me.bmp", pngBuf.Bytes())
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "only jpg/jpeg/png/webp allowed", env.Error)
}

func TestPhotoUploadWithoutUploader(t *testing.T) {
	db := testutil.NewDB(t)
	users := repository.NewUserRepository(db)
	require.NoError(t, SeedAdmin(users, "admin@example.org", "Administrator", zap.NewNop()))
	srv := &testServer{
		app: NewApp(AppDeps{
			DB:           db,
			Auth:         helper.SetupAuth("e2e-secret"),
			Log:          zap.NewNop(),
			RateLimitMax: 1000,
		}),
		users: users,
	}
	admin := srv.mobileLogin(t, "admin@example.org", "admin-password")

	var pngBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, image.NewRGBA(image.Rect(0, 0, 4, 4))))

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "me.png")
	require.NoError(t, err)
	_, err = part.Write(pngBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/user/photo", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set(middleware.ClientTypeHeader, middleware.ClientTypeMobile)
	req.Header.Set("Authorization", "Bearer "+admin.bearer)
	resp, err := srv.app.Test(req, -1)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "photo uploads are not configured", env.Error)
}
