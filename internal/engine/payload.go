/*
PURPOSE:
  Builds the request body for one attempt.

REQUIREMENTS:
  User-specified:
  - Every attempt sends a new message id and timestamp.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine/processor.go

ERROR HANDLING:
  - A blank question is a ValidationError.
*/

package engine

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/daryltucker/ai-tester/internal/model"
)

// NewPayload builds the request body for one attempt. Every call yields a
// fresh message id and timestamp.
func NewPayload(question string) (model.Payload, error) {
	content := strings.TrimSpace(question)
	if content == "" {
		return model.Payload{}, validationf("question cannot be empty")
	}

	return model.Payload{
		Messages: []model.Message{
			{
				ID:      uuid.NewString(),
				Date:    time.Now().UTC().Format(time.RFC3339Nano),
				Role:    model.RoleUser,
				Content: content,
			},
		},
	}, nil
}
