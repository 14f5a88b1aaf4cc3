package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	path string
	user string
	pass string
	form url.Values
}

func mailgunServer(t *testing.T, status int, body string) (*httptest.Server, *captured, *int32) {
	t.Helper()
	c := &captured{}
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		c.path = r.URL.Path
		c.user, c.pass, _ = r.BasicAuth()
		_ = r.ParseForm()
		c.form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, c, &hits
}

func TestNewMailgun_RequiredSettings(t *testing.T) {
	_, err := NewMailgun(Config{APIKey: "k", Enabled: true})
	require.ErrorIs(t, err, ErrMissingSetting)

	_, err = NewMailgun(Config{SupportEmail: "support@example.com"})
	require.ErrorIs(t, err, ErrMissingSetting)

	m, err := NewMailgun(Config{SupportEmail: "support@example.com", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, m.Config().BaseURL)
	assert.Equal(t, "support@example.com", m.Config().DefaultSender)
}

func TestMailgun_SendTemplate(t *testing.T) {
	srv, c, _ := mailgunServer(t, http.StatusOK, `{"id":"<1@mg>","message":"Queued. Thank you."}`)

	m, err := NewMailgun(Config{
		BaseURL:      srv.URL + "/",
		Enabled:      true,
		SupportEmail: "support@example.com",
		APIKey:       "key-123",
	})
	require.NoError(t, err)

	res, err := m.Send(context.Background(), Message{
		To:        []string{"a@example.com", "b@example.com"},
		Subject:   "Welcome",
		Template:  "welcome",
		Variables: map[string]string{"name": "A"},
		Body:      "ignored",
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "<1@mg>", res.ID)

	assert.Equal(t, "/messages", c.path)
	assert.Equal(t, "api", c.user)
	assert.Equal(t, "key-123", c.pass)
	assert.Equal(t, "support@example.com", c.form.Get("from"))
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, c.form["to"])
	assert.Equal(t, "welcome", c.form.Get("template"))
	assert.Empty(t, c.form.Get("text"))

	var vars map[string]string
	require.NoError(t, json.Unmarshal([]byte(c.form.Get("h:X-Mailgun-Variables")), &vars))
	assert.Equal(t, map[string]string{"name": "A"}, vars)
}

func TestMailgun_SendBody(t *testing.T) {
	srv, c, _ := mailgunServer(t, http.StatusOK, `{"id":"<2@mg>"}`)
	m, err := NewMailgun(Config{BaseURL: srv.URL, Enabled: true, SupportEmail: "support@example.com", APIKey: "k", DefaultSender: "noreply@example.com"})
	require.NoError(t, err)

	_, err = m.Send(context.Background(), Message{To: []string{"a@example.com"}, Subject: "s", Body: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "noreply@example.com", c.form.Get("from"))
	assert.Equal(t, "hello", c.form.Get("text"))
	assert.Empty(t, c.form.Get("h:X-Mailgun-Variables"))

	_, err = m.Send(context.Background(), Message{To: []string{"a@example.com"}, Subject: "s", Body: "hi", Sender: "me@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", c.form.Get("from"))
}

func TestMailgun_Errors(t *testing.T) {
	srv, _, hits := mailgunServer(t, http.StatusUnauthorized, `Forbidden`)
	m, err := NewMailgun(Config{BaseURL: srv.URL, Enabled: true, SupportEmail: "support@example.com", APIKey: "bad"})
	require.NoError(t, err)

	_, err = m.Send(context.Background(), Message{To: []string{"a@example.com"}, Subject: "s"})
	require.ErrorIs(t, err, ErrNoContent)
	_, err = m.Send(context.Background(), Message{Subject: "s", Body: "b"})
	require.ErrorIs(t, err, ErrNoRecipient)
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))

	_, err = m.Send(context.Background(), Message{To: []string{"a@example.com"}, Subject: "s", Body: "b"})
	require.ErrorContains(t, err, "401")
	require.ErrorContains(t, err, "Forbidden")
}

func TestMailgun_DisabledSendsNothing(t *testing.T) {
	srv, _, hits := mailgunServer(t, http.StatusOK, `{}`)
	m, err := NewMailgun(Config{BaseURL: srv.URL, SupportEmail: "support@example.com", APIKey: "k"})
	require.NoError(t, err)

	res, err := m.Send(context.Background(), Message{To: []string{"a@example.com"}, Subject: "s", Body: "b"})
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
}

func TestDummy(t *testing.T) {
	d, err := NewDummy(Config{Enabled: true, SupportEmail: "test@test.com"})
	require.NoError(t, err)

	res, err := d.Send(context.Background(), Message{To: []string{"a@example.com"}, Subject: "s", Body: "b"})
	require.NoError(t, err)
	assert.Equal(t, "<dummy-1>", res.ID)

	_, err = d.Send(context.Background(), Message{To: []string{"a@example.com"}})
	require.ErrorIs(t, err, ErrNoContent)

	sent := d.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "test@test.com", sent[0].Sender)

	off, err := NewDummy(Config{SupportEmail: "test@test.com"})
	require.NoError(t, err)
	res, err = off.Send(context.Background(), Message{To: []string{"a@example.com"}, Body: "b"})
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Empty(t, off.Sent())
}

func TestNew(t *testing.T) {
	cfg := Config{Enabled: true, SupportEmail: "s@example.com", APIKey: "k"}

	m, err := New(ImplMailgun, cfg)
	require.NoError(t, err)
	assert.IsType(t, &Mailgun{}, m)

	m, err = New(ImplDummy, cfg)
	require.NoError(t, err)
	assert.IsType(t, &Dummy{}, m)

	_, err = New("smtp", cfg)
	require.ErrorIs(t, err, ErrUnknownImpl)
}
