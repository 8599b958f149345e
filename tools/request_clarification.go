package tools

import "github.com/petasbytes/form-agent/session"

const RequestClarificationName = "request_clarification"

type RequestClarificationInput struct {
	Question string   `json:"question" jsonschema:"minLength=1" jsonschema_description:"The clarifying question to ask the user."`
	Options  []string `json:"options,omitempty" jsonschema_description:"Optional predefined answers to offer."`
	Context  string   `json:"context,omitempty" jsonschema_description:"Optional explanation shown with the question."`
}

var RequestClarificationDefinition = define[RequestClarificationInput](
	RequestClarificationName,
	"Ask the user a question when their intent is ambiguous. After calling this tool you MUST stop; no other tool call in this response will run.",
)

func (in RequestClarificationInput) clarification() session.Clarification {
	return session.Clarification{Question: in.Question, Options: in.Options, Context: in.Context}
}
