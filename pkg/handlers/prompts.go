package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	mcperrors "github.com/ajitpratap0/mcp-stdio-server/pkg/errors"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/logging"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/protocol"
)

// ReviewCodePromptName is the name of the code review prompt.
const ReviewCodePromptName = "review-code"

const defaultReviewFocus = "general"

// ReviewCodeArgs are the arguments of the review-code prompt.
type ReviewCodeArgs struct {
	Code  string `json:"code"`
	Focus string `json:"focus,omitempty"`
}

// ReviewCodePrompt builds a request for a code review.
type ReviewCodePrompt struct {
	logger logging.Logger
}

// NewReviewCodePrompt creates the review-code prompt.
func NewReviewCodePrompt(logger logging.Logger) *ReviewCodePrompt {
	return &ReviewCodePrompt{logger: logger.WithFields(logging.String("component", "ReviewCodePrompt"))}
}

// Prompt describes the review-code prompt.
func (p *ReviewCodePrompt) Prompt() protocol.Prompt {
	return protocol.Prompt{
		Name:        ReviewCodePromptName,
		Description: "Generates a prompt to ask the LLM to review code",
		Arguments: []protocol.PromptArgument{
			{Name: "code", Description: "The code snippet to review", Required: true},
			{Name: "focus", Description: "Optional area of focus for the review (performance, security, style, general)"},
		},
	}
}

// Get returns a single user message asking for a review of code.
func (p *ReviewCodePrompt) Get(ctx context.Context, arguments json.RawMessage) (*protocol.GetPromptResult, error) {
	if arguments == nil {
		return nil, mcperrors.MissingParameter("arguments")
	}

	var args ReviewCodeArgs
	if err := decodeArguments(arguments, &args, "code"); err != nil {
		return nil, err
	}
	focus := args.Focus
	if focus == "" {
		focus = defaultReviewFocus
	}

	p.logger.WithContext(ctx).Debug("Generating code review prompt", logging.String("focus", focus))

	text := "Please review the following code for potential issues and suggest improvements"
	if focus != defaultReviewFocus {
		text += ", focusing specifically on " + focus
	}
	text += fmt.Sprintf(":\n\n```\n%s\n```", args.Code)

	return &protocol.GetPromptResult{
		Description: fmt.Sprintf("Requesting %s review for code snippet", focus),
		Messages: []protocol.PromptMessage{{
			Role:    "user",
			Content: []protocol.TextContent{protocol.NewTextContent(text)},
		}},
	}, nil
}
