// Package expert answers a question in the voice of a chosen persona.
package expert

import (
	"context"
	"fmt"
	"strings"

	"zr3/senmon/internal/llm"
	"zr3/senmon/internal/persona"
)

// ErrorPrefix marks a rendered failure so a UI can tell it apart from an
// answer.
const ErrorPrefix = "An error occurred: "

// Result is either the model's text or the error that prevented it.
type Result struct {
	Text string
	Err  error
}

func (r Result) OK() bool {
	return r.Err == nil
}

// String renders the result the way it is shown to the user.
func (r Result) String() string {
	if r.Err != nil {
		return ErrorPrefix + r.Err.Error()
	}
	return r.Text
}

// IsFailure reports whether text is a rendered failure.
func IsFailure(text string) bool {
	return strings.HasPrefix(text, ErrorPrefix)
}

// NewChatRequest is the two message sequence sent for one question.
func NewChatRequest(instruction, userText string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: instruction},
		{Role: llm.RoleUser, Content: userText},
	}
}

type Service struct {
	catalog *persona.Catalog
	client  llm.Client
}

func NewService(catalog *persona.Catalog, client llm.Client) *Service {
	return &Service{
		catalog: catalog,
		client:  client,
	}
}

func (s *Service) Catalog() *persona.Catalog {
	return s.catalog
}

// Respond asks the client once. Failures of any kind, panics included, are
// returned in the Result and never propagate.
func (s *Service) Respond(ctx context.Context, userText, personaID string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Result{Err: fmt.Errorf("%v", r)}
		}
	}()

	instruction := s.catalog.Lookup(personaID)
	text, err := s.client.Invoke(ctx, NewChatRequest(instruction, userText))
	if err != nil {
		return Result{Err: err}
	}
	return Result{Text: text}
}

// GetResponse is Respond rendered as a single string.
func (s *Service) GetResponse(ctx context.Context, userText, personaID string) string {
	return s.Respond(ctx, userText, personaID).String()
}
