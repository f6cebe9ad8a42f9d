// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rdm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/lutetab/internal/httputil"
	"github.com/pdiddy/lutetab/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

func testClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := NewClient(types.UploadConfig{
		APIURL:     url + "/api/",
		HTTPConfig: types.HTTPConfig{UserAgent: "lutetab-test"},
		MaxRetries: 2,
	}, "tok_123", zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(types.UploadConfig{APIURL: "https://rdm.example/api"}, "  ", nil)
	assert.ErrorIs(t, err, ErrNoToken)

	_, err = NewClient(types.UploadConfig{}, "tok", nil)
	assert.ErrorContains(t, err, "api_url")

	c, err := NewClient(types.UploadConfig{APIURL: "https://rdm.example/api/"}, "tok", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://rdm.example/api", c.BaseURL)
	assert.Equal(t, 30*time.Second, c.HTTP.Timeout)
}

func TestCreateDraft(t *testing.T) {
	var got struct {
		method, path, auth, ctype, agent string
		body                             Record
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		got.auth = r.Header.Get("Authorization")
		got.ctype = r.Header.Get("Content-Type")
		got.agent = r.Header.Get("User-Agent")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got.body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"abcd-1234","links":{"self":"https://rdm.example/api/records/abcd-1234/draft","self_html":"https://rdm.example/uploads/abcd-1234"}}`))
	}))
	defer ts.Close()

	rec, err := BuildRecord(testRecording(), testSources(t), types.Person{}, fixedNow)
	require.NoError(t, err)

	draft, err := testClient(t, ts.URL).CreateDraft(context.Background(), rec)
	require.NoError(t, err)

	assert.Equal(t, "abcd-1234", draft.ID)
	assert.Equal(t, "https://rdm.example/uploads/abcd-1234", draft.Links.SelfHTML)
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/api/records", got.path)
	assert.Equal(t, "Bearer tok_123", got.auth)
	assert.Equal(t, "application/json", got.ctype)
	assert.Equal(t, "lutetab-test", got.agent)
	assert.Equal(t, "Hoftanz (Jud_1523-2_n12)", got.body.Metadata.Title)
}

func TestCreateDraft_RetriesThrottled(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		var rec Record
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil || rec.Metadata.Title == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"retried"}`))
	}))
	defer ts.Close()

	rec, err := BuildRecord(testRecording(), testSources(t), types.Person{}, fixedNow)
	require.NoError(t, err)

	draft, err := testClient(t, ts.URL).CreateDraft(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "retried", draft.ID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCreateDraft_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode int
		wantText string
	}{
		{"validation error", http.StatusBadRequest, `{"status":400,"message":"A validation error occurred."}`, 400, "validation error"},
		{"forbidden without body", http.StatusForbidden, "", 403, "HTTP 403"},
		{"throttled past retries", http.StatusTooManyRequests, "slow down", 429, "slow down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			_, err := testClient(t, ts.URL).CreateDraft(context.Background(), Record{})
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantCode, apiErr.StatusCode)
			assert.Contains(t, err.Error(), tt.wantText)
		})
	}
}

func TestCreateDraft_BadResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("not json"))
	}))
	defer ts.Close()

	_, err := testClient(t, ts.URL).CreateDraft(context.Background(), Record{})
	assert.ErrorContains(t, err, "parsing repository response")
}

// fakeDrafter records submitted titles and fails on demand.
type fakeDrafter struct {
	titles []string
	failOn string
}

func (f *fakeDrafter) CreateDraft(_ context.Context, rec Record) (Draft, error) {
	if strings.Contains(rec.Metadata.Title, f.failOn) && f.failOn != "" {
		return Draft{}, &APIError{StatusCode: 500, Body: "boom"}
	}
	f.titles = append(f.titles, rec.Metadata.Title)
	return Draft{ID: fmt.Sprintf("id-%d", len(f.titles))}, nil
}

func TestUploader_Run(t *testing.T) {
	good := testRecording()
	second := testRecording()
	second.Title = "Passamezzo"
	second.WorkID = "Jud_1523-2_n13"
	unknown := testRecording()
	unknown.SourceID = "nope"

	d := &fakeDrafter{failOn: "Passamezzo"}
	var buf bytes.Buffer
	u := NewUploader(types.UploadConfig{}, d, zap.NewNop(), &buf)
	u.now = func() time.Time { return fixedNow }

	sum, err := u.Run(context.Background(), []Recording{good, second, unknown}, testSources(t))
	require.NoError(t, err)

	assert.Equal(t, Summary{Created: 1, Failed: 2}, sum)
	assert.Equal(t, []string{"Hoftanz (Jud_1523-2_n12)"}, d.titles)
	out := buf.String()
	assert.Contains(t, out, "created: Jud_1523-2_n12 -> id-1")
	assert.Contains(t, out, "failed:  Jud_1523-2_n13 (repository returned HTTP 500: boom)")
	assert.Contains(t, out, `failed:  Jud_1523-2_n12 (unknown source id "nope")`)
	assert.Contains(t, out, "Upload summary: 1 created, 2 failed")
}

func TestUploader_DryRun(t *testing.T) {
	var buf bytes.Buffer
	u := NewUploader(types.UploadConfig{DryRun: true}, nil, nil, &buf)
	u.now = func() time.Time { return fixedNow }

	sum, err := u.Run(context.Background(), []Recording{testRecording()}, testSources(t))
	require.NoError(t, err)
	assert.Equal(t, Summary{Printed: 1}, sum)

	var rec Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "2026-05-04", rec.Metadata.PublicationDate)
	assert.NotContains(t, buf.String(), "Upload summary")
}

func TestUploader_RequiresDrafter(t *testing.T) {
	u := NewUploader(types.UploadConfig{}, nil, nil, &bytes.Buffer{})
	_, err := u.Run(context.Background(), []Recording{testRecording()}, testSources(t))
	assert.True(t, errors.Is(err, ErrNoToken))
}
