package handler

import (
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/doitintl/hello/lighthouse/framework/mid"
	"github.com/doitintl/hello/lighthouse/framework/web"
	"github.com/doitintl/hello/lighthouse/lighthouse/domain"
	"github.com/doitintl/hello/lighthouse/lighthouse/service/iface/mocks"
	"github.com/doitintl/hello/lighthouse/logger"
)

const pushPath = "/tasks/lighthouse"

func envelope(data string) string {
	return `{"message": {"data": "` + base64.StdEncoding.EncodeToString([]byte(data)) +
		`", "messageId": "136969346945"}, "subscription": "projects/lighthouse-test/subscriptions/lighthouse-push"}`
}

func TestLighthouse_HandlePushMessage(t *testing.T) {
	type fields struct {
		service mocks.Dispatcher
	}

	tests := []struct {
		name       string
		body       string
		on         func(*fields)
		wantStatus int
		wantBody   string
		notCalled  bool
	}{
		{
			name: "target message is dispatched",
			body: envelope("googlesearch"),
			on: func(f *fields) {
				f.service.On("Handle", mock.Anything, []byte("googlesearch")).Return(domain.OutcomeOK, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"outcome":"ok"}`,
		},
		{
			name: "fan out keyword is dispatched",
			body: envelope("all"),
			on: func(f *fields) {
				f.service.On("Handle", mock.Anything, []byte("all")).Return(domain.OutcomeOK, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"outcome":"ok"}`,
		},
		{
			name: "invalid message is acknowledged",
			body: envelope("invalid_message"),
			on: func(f *fields) {
				f.service.On("Handle", mock.Anything, []byte("invalid_message")).Return(domain.OutcomeLoggedError, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"outcome":"logged_error"}`,
		},
		{
			name: "downstream failure is redelivered",
			body: envelope("googlesearch"),
			on: func(f *fields) {
				f.service.On("Handle", mock.Anything, []byte("googlesearch")).Return(domain.OutcomeOK, errors.New("upload failed")).Once()
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"upload failed"}`,
		},
		{
			name: "panicking dispatcher is recovered",
			body: envelope("googlesearch"),
			on: func(f *fields) {
				f.service.On("Handle", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
					panic("boom")
				}).Return(domain.OutcomeOK, nil).Once()
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Internal Server Error"}`,
		},
		{
			name:       "malformed envelope",
			body:       `{"message": `,
			wantStatus: http.StatusBadRequest,
			notCalled:  true,
		},
		{
			name:       "empty body",
			body:       "",
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"push request carries no message"}`,
			notCalled:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fields{}

			if tt.on != nil {
				tt.on(f)
			}

			h := NewLighthouse(logger.FromContext, &f.service)

			app := web.NewTestApp(mid.Logger(), mid.Errors(nil), mid.Panics(nil))
			app.Post(pushPath, h.HandlePushMessage)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, pushPath, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			app.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)

			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, w.Body.String())
			}

			if tt.notCalled {
				f.service.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
			}

			f.service.AssertExpectations(t)
		})
	}
}

func TestExtractDataFromMessage(t *testing.T) {
	data, err := extractDataFromMessage(strings.NewReader(envelope("simoahava")))
	assert.NoError(t, err)
	assert.Equal(t, []byte("simoahava"), data)

	data, err = extractDataFromMessage(strings.NewReader(`{"message": {}}`))
	assert.NoError(t, err)
	assert.Empty(t, data)

	_, err = extractDataFromMessage(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyEnvelope)
}
