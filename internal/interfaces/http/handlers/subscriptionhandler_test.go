package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	deviceUsecases "github.com/orris-inc/passage/internal/application/device/usecases"
	nodeUsecases "github.com/orris-inc/passage/internal/application/node/usecases"
	"github.com/orris-inc/passage/internal/domain/subscription"
	vo "github.com/orris-inc/passage/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/passage/internal/domain/user"
	"github.com/orris-inc/passage/internal/shared/logger"
	"github.com/orris-inc/passage/internal/shared/utils"
)

// =====================================================================
// Mock dependencies
// =====================================================================

type mockTokenResolver struct {
	sub *subscription.Subscription
	err error
}

func (m *mockTokenResolver) GetByAccessToken(ctx context.Context, token string) (*subscription.Subscription, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.sub == nil || m.sub.Credential().AccessToken() != token {
		return nil, subscription.ErrSubscriptionNotFound
	}
	return m.sub, nil
}

type mockOwnerGetter struct {
	owner *user.User
}

func (m *mockOwnerGetter) GetByID(ctx context.Context, id uint) (*user.User, error) {
	if m.owner == nil || m.owner.ID() != id {
		return nil, user.ErrUserNotFound
	}
	return m.owner, nil
}

type mockRecordAccessUC struct {
	calls []deviceUsecases.RecordAccessCommand
}

func (m *mockRecordAccessUC) Execute(ctx context.Context, cmd deviceUsecases.RecordAccessCommand) (bool, error) {
	m.calls = append(m.calls, cmd)
	return true, nil
}

type mockProfileUC struct {
	result *nodeUsecases.GenerateClientProfileResult
	err    error
	last   nodeUsecases.GenerateClientProfileCommand
}

func (m *mockProfileUC) Execute(ctx context.Context, cmd nodeUsecases.GenerateClientProfileCommand) (*nodeUsecases.GenerateClientProfileResult, error) {
	m.last = cmd
	return m.result, m.err
}

// =====================================================================
// Fixtures
// =====================================================================

type handlerFixture struct {
	sub      *subscription.Subscription
	owner    *user.User
	resolver *mockTokenResolver
	owners   *mockOwnerGetter
	recorder *mockRecordAccessUC
	profile  *mockProfileUC
	engine   *gin.Engine
}

var testExpiry = time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

func newHandlerFixture(t *testing.T, banned bool) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	now := time.Now().UTC()
	sub, err := subscription.ReconstructSubscription(
		11, 5, 2, nil,
		vo.StatusActive, vo.OriginUserPurchase, vo.NewCredential(),
		"", false, nil, false, 512,
		now, testExpiry, now,
	)
	require.NoError(t, err)

	f := &handlerFixture{
		sub:      sub,
		owner:    user.ReconstructUser(5, 1001, "alice", 0, banned, nil, nil, &now, false, now, now),
		recorder: &mockRecordAccessUC{},
		profile: &mockProfileUC{result: &nodeUsecases.GenerateClientProfileResult{
			Content:        `{"outbounds":[]}`,
			ContentType:    "application/json; charset=utf-8",
			Format:         nodeUsecases.FormatSingBox,
			SubscriptionID: 11,
			UsedTraffic:    512,
			TrafficLimit:   1024,
			ExpiresAt:      testExpiry,
		}},
	}
	f.resolver = &mockTokenResolver{sub: sub}
	f.owners = &mockOwnerGetter{owner: f.owner}

	h := NewSubscriptionHandler(f.resolver, f.owners, f.recorder, f.profile, 12*time.Hour, logger.NewNop())
	f.engine = gin.New()
	f.engine.GET("/sub/:token", h.GetProfile)
	return f
}

func (f *handlerFixture) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "198.51.100.7:40000"
	req.Header.Set("User-Agent", "sing-box 1.10")
	f.engine.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *utils.ErrorInfo {
	t.Helper()
	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return resp.Error
}

// =====================================================================
// Tests
// =====================================================================

func TestSubscriptionHandler_ServesProfileWithUsageHeaders(t *testing.T) {
	f := newHandlerFixture(t, false)

	w := f.get("/sub/" + f.sub.Credential().AccessToken())

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"outbounds":[]}`, w.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t,
		"upload=0; download=512; total=1024; expire=1798761600",
		w.Header().Get("Subscription-Userinfo"))
	assert.Equal(t, "12", w.Header().Get("Profile-Update-Interval"))
	assert.Empty(t, w.Header().Get("Content-Disposition"))

	assert.Equal(t, uint(11), f.profile.last.SubscriptionID)
	assert.Equal(t, uint(5), f.profile.last.UserID)
	assert.Empty(t, f.profile.last.Format)

	require.Len(t, f.recorder.calls, 1)
	assert.Equal(t, "198.51.100.7", f.recorder.calls[0].ClientIP)
	assert.Equal(t, "sing-box 1.10", f.recorder.calls[0].UserAgent)
}

func TestSubscriptionHandler_PassesFormatAndMarksClashAttachment(t *testing.T) {
	f := newHandlerFixture(t, false)
	f.profile.result.Format = nodeUsecases.FormatClash
	f.profile.result.ContentType = "text/yaml; charset=utf-8"

	w := f.get("/sub/" + f.sub.Credential().AccessToken() + "?format=clash")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, nodeUsecases.FormatClash, f.profile.last.Format)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "passage.yaml")
}

func TestSubscriptionHandler_UnknownTokenIsNotFound(t *testing.T) {
	f := newHandlerFixture(t, false)

	w := f.get("/sub/00000000-0000-0000-0000-000000000000")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decodeError(t, w).Type)
	assert.Empty(t, f.recorder.calls)
}

func TestSubscriptionHandler_BannedOwnerLooksLikeUnknownToken(t *testing.T) {
	f := newHandlerFixture(t, true)

	w := f.get("/sub/" + f.sub.Credential().AccessToken())

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "subscription not found", decodeError(t, w).Message)
	assert.Empty(t, f.recorder.calls)
}

func TestSubscriptionHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"expired subscription", subscription.ErrNotActive, http.StatusPaymentRequired},
		{"unsupported format", nodeUsecases.ErrUnsupportedFormat, http.StatusBadRequest},
		{"unexpected failure", assert.AnError, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newHandlerFixture(t, false)
			f.profile.result = nil
			f.profile.err = tc.err

			w := f.get("/sub/" + f.sub.Credential().AccessToken())

			assert.Equal(t, tc.wantStatus, w.Code)
			decodeError(t, w)
			assert.Empty(t, f.recorder.calls)
		})
	}
}
