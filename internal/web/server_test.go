package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zr3/senmon/internal/expert"
	"zr3/senmon/internal/persona"
)

type call struct {
	text      string
	personaID string
}

type fakeResponder struct {
	calls   []call
	result  expert.Result
	catalog *persona.Catalog
}

func (f *fakeResponder) Catalog() *persona.Catalog {
	if f.catalog == nil {
		return persona.Default()
	}
	return f.catalog
}

func (f *fakeResponder) Respond(_ context.Context, text, personaID string) expert.Result {
	f.calls = append(f.calls, call{text: text, personaID: personaID})
	return f.result
}

func postForm(t *testing.T, s *Server, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func postJSON(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestGetPage(t *testing.T) {
	s := NewServer(&fakeResponder{}, false)

	t.Run("default persona checked", func(t *testing.T) {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `value="Programming Expert" checked`)
		assert.Contains(t, body, persona.Default().Lookup(persona.Programming))
		assert.Contains(t, body, "Travel Expert")
		assert.NotContains(t, body, "Answer</h3>")
	})

	t.Run("persona from query", func(t *testing.T) {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?persona=Travel+Expert", nil))

		assert.Contains(t, rec.Body.String(), `value="Travel Expert" checked`)
	})
}

func TestSubmitForm(t *testing.T) {
	t.Run("renders markdown answer", func(t *testing.T) {
		responder := &fakeResponder{result: expert.Result{Text: "Use **os.ReadFile**.\n\n<script>alert(1)</script>"}}
		s := NewServer(responder, false)

		rec := postForm(t, s, url.Values{"persona": {persona.Programming}, "question": {"How do I read a file?"}})

		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, responder.calls, 1)
		assert.Equal(t, call{text: "How do I read a file?", personaID: persona.Programming}, responder.calls[0])

		body := rec.Body.String()
		assert.Contains(t, body, "<strong>os.ReadFile</strong>")
		assert.NotContains(t, body, "<script>alert(1)</script>")
	})

	t.Run("blank question", func(t *testing.T) {
		responder := &fakeResponder{}
		s := NewServer(responder, false)

		rec := postForm(t, s, url.Values{"persona": {persona.Cooking}, "question": {"  "}})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), emptyQuestionWarning)
		assert.Empty(t, responder.calls)
	})

	t.Run("failure is shown", func(t *testing.T) {
		responder := &fakeResponder{result: expert.Result{Err: errors.New("boom")}}
		s := NewServer(responder, false)

		rec := postForm(t, s, url.Values{"persona": {persona.Cooking}, "question": {"Dashi?"}})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `<div class="error">An error occurred: boom</div>`)
	})

	t.Run("unknown persona falls back", func(t *testing.T) {
		responder := &fakeResponder{result: expert.Result{Text: "ok"}}
		s := NewServer(responder, false)

		rec := postForm(t, s, url.Values{"persona": {"Wizard"}, "question": {"hi"}})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `value="Programming Expert" checked`)
		require.Len(t, responder.calls, 1)
		assert.Equal(t, "Wizard", responder.calls[0].personaID)
	})

	t.Run("unknown persona rejected in strict mode", func(t *testing.T) {
		responder := &fakeResponder{}
		s := NewServer(responder, true)

		rec := postForm(t, s, url.Values{"persona": {"Wizard"}, "question": {"hi"}})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "unknown persona")
		assert.Empty(t, responder.calls)
	})
}

func TestAskAPI(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		responder := &fakeResponder{result: expert.Result{Text: "Pack light."}}
		s := NewServer(responder, false)

		rec := postJSON(t, s, `{"persona": "Travel Expert", "question": "Tips?"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp askResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, askResponse{Persona: persona.Travel, OK: true, Answer: "Pack light."}, resp)
	})

	t.Run("failure stays 200", func(t *testing.T) {
		responder := &fakeResponder{result: expert.Result{Err: errors.New("quota exceeded")}}
		s := NewServer(responder, false)

		rec := postJSON(t, s, `{"persona": "", "question": "Tips?"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp askResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.OK)
		assert.Equal(t, persona.Programming, resp.Persona)
		assert.Equal(t, "An error occurred: quota exceeded", resp.Error)
	})

	t.Run("blank question", func(t *testing.T) {
		s := NewServer(&fakeResponder{}, false)
		rec := postJSON(t, s, `{"persona": "Travel Expert", "question": ""}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("strict mode", func(t *testing.T) {
		s := NewServer(&fakeResponder{}, true)
		rec := postJSON(t, s, `{"persona": "Wizard", "question": "hi"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListPersonas(t *testing.T) {
	s := NewServer(&fakeResponder{}, false)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/personas", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var out []personaView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 4)
	assert.True(t, out[0].Default)
	assert.Equal(t, persona.Programming, out[0].ID)
	assert.False(t, out[3].Default)
}

func TestServerUsesResponderCatalog(t *testing.T) {
	catalog, err := persona.New(
		persona.Persona{ID: "Tea Expert", Instruction: "You know tea."},
		persona.Persona{ID: "Coffee Expert", Instruction: "You know coffee."},
	)
	require.NoError(t, err)
	s := NewServer(&fakeResponder{catalog: catalog}, false)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	body := rec.Body.String()
	assert.Contains(t, body, `value="Tea Expert" checked`)
	assert.Contains(t, body, "Coffee Expert")
	assert.NotContains(t, body, persona.Programming)
}
