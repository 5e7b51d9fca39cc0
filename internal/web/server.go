// Package web serves the expert form as a single HTML page plus a small JSON
// API.
package web

import (
	"bytes"
	"context"
	"html"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"zr3/senmon/internal/expert"
	"zr3/senmon/internal/persona"
	"zr3/senmon/internal/web/templates"
)

const emptyQuestionWarning = "Please enter a question."

// Responder is satisfied by *expert.Service.
type Responder interface {
	Respond(ctx context.Context, userText, personaID string) expert.Result
	Catalog() *persona.Catalog
}

func render(c echo.Context, status int, component templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return component.Render(c.Request().Context(), c.Response().Writer)
}

type Server struct {
	echo      *echo.Echo
	catalog   *persona.Catalog
	responder Responder
	strict    bool
	markdown  goldmark.Markdown
	policy    *bluemonday.Policy
}

// NewServer wires the routes. With strict set, unknown persona ids are
// rejected instead of falling back to the default persona.
func NewServer(responder Responder, strict bool) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger(), middleware.Recover())

	s := &Server{
		echo:      e,
		catalog:   responder.Catalog(),
		responder: responder,
		strict:    strict,
		markdown:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy:    bluemonday.UGCPolicy(),
	}

	s.setupRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	s.echo.GET("/", s.getPage)
	s.echo.POST("/", s.submitForm)

	api := s.echo.Group("/api")
	api.GET("/personas", s.listPersonas)
	api.POST("/ask", s.ask)
}

func (s *Server) page(selected string) templates.Page {
	p, ok := s.catalog.Get(selected)
	if !ok {
		p = s.catalog.Default()
	}
	return templates.Page{
		Personas:    s.catalog.IDs(),
		Selected:    p.ID,
		Instruction: p.Instruction,
	}
}

func (s *Server) getPage(c echo.Context) error {
	return render(c, http.StatusOK, templates.Index(s.page(c.QueryParam("persona"))))
}

func (s *Server) submitForm(c echo.Context) error {
	personaID := c.FormValue("persona")
	question := c.FormValue("question")

	data := s.page(personaID)
	data.Question = question

	if s.strict {
		if err := s.catalog.Validate(personaID); err != nil {
			data.Warning = err.Error()
			return render(c, http.StatusBadRequest, templates.Index(data))
		}
	}
	if strings.TrimSpace(question) == "" {
		data.Warning = emptyQuestionWarning
		return render(c, http.StatusOK, templates.Index(data))
	}

	result := s.responder.Respond(c.Request().Context(), question, personaID)
	data.Answered = true
	if result.OK() {
		data.Answer = s.renderAnswer(result.Text)
	} else {
		data.Failure = result.String()
	}
	return render(c, http.StatusOK, templates.Index(data))
}

// renderAnswer turns model markdown into sanitised HTML.
func (s *Server) renderAnswer(text string) string {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(text), &buf); err != nil {
		return html.EscapeString(text)
	}
	return string(s.policy.SanitizeBytes(buf.Bytes()))
}

type personaView struct {
	ID          string `json:"id"`
	Instruction string `json:"instruction"`
	Default     bool   `json:"default"`
}

func (s *Server) listPersonas(c echo.Context) error {
	def := s.catalog.Default().ID
	out := make([]personaView, 0, s.catalog.Len())
	for _, p := range s.catalog.All() {
		out = append(out, personaView{ID: p.ID, Instruction: p.Instruction, Default: p.ID == def})
	}
	return c.JSON(http.StatusOK, out)
}

type askRequest struct {
	Persona  string `json:"persona"`
	Question string `json:"question"`
}

type askResponse struct {
	Persona string `json:"persona"`
	OK      bool   `json:"ok"`
	Answer  string `json:"answer,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) ask(c echo.Context) error {
	req := new(askRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Question) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, emptyQuestionWarning)
	}
	if s.strict {
		if err := s.catalog.Validate(req.Persona); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	result := s.responder.Respond(c.Request().Context(), req.Question, req.Persona)
	resp := askResponse{
		Persona: s.page(req.Persona).Selected,
		OK:      result.OK(),
	}
	if result.OK() {
		resp.Answer = result.Text
	} else {
		resp.Error = result.String()
	}
	return c.JSON(http.StatusOK, resp)
}
