package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sendGridPayload struct {
	From struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"from"`
	Subject          string `json:"subject"`
	Personalizations []struct {
		To []struct {
			Email string `json:"email"`
			Name  string `json:"name"`
		} `json:"to"`
	} `json:"personalizations"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
	Categories []string `json:"categories"`
}

func TestSendGridMailerDeliver(t *testing.T) {
	var got sendGridPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer sg-key", r.Header.Get("Authorization"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	m := NewSendGridMailer("sg-key", server.URL, "clinic@x.com", "", zerolog.Nop())
	require.NotNil(t, m)

	err := m.Deliver(context.Background(), BookingConfirmationLetter(booking))
	require.NoError(t, err)

	assert.Equal(t, "clinic@x.com", got.From.Email)
	assert.Equal(t, "Doctors Portal", got.From.Name)
	assert.Equal(t, "Your appointment for Cleaning is on 2024-01-01 at 10:00 is confirmed", got.Subject)
	require.Len(t, got.Personalizations, 1)
	require.Len(t, got.Personalizations[0].To, 1)
	assert.Equal(t, "a@x.com", got.Personalizations[0].To[0].Email)
	require.Len(t, got.Content, 2)
	assert.Equal(t, "text/plain", got.Content[0].Type)
	assert.Equal(t, "text/html", got.Content[1].Type)
	assert.Equal(t, []string{KindBookingConfirmation}, got.Categories)
}

func TestSendGridMailerRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer server.Close()

	m := NewSendGridMailer("sg-key", server.URL, "clinic@x.com", "Clinic", zerolog.Nop())
	err := m.Deliver(context.Background(), Letter{To: "a@x.com", Subject: "hi", Text: "hi"})
	assert.Error(t, err)
}

func TestNewSendGridMailerWithoutKey(t *testing.T) {
	assert.Nil(t, NewSendGridMailer("", "", "clinic@x.com", "", zerolog.Nop()))

	var m *SendGridMailer
	assert.Error(t, m.Deliver(context.Background(), Letter{To: "a@x.com"}))
}
