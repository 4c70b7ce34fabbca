package validator

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/dkovac/renthub/internal/domain"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

const (
	maxContentRunes = 5000
	maxAttachments  = 10
)

// ValidateSendMessage checks the message body before any store call: a
// message must carry trimmed text or at least one attachment, and every
// attachment must reference what the upload step returned.
func ValidateSendMessage(content string, attachments []domain.Attachment) ValidationErrors {
	errs := make(ValidationErrors)

	content = strings.TrimSpace(content)
	if content == "" && len(attachments) == 0 {
		errs.Add("content", "Message needs text or at least one attachment")
	}
	if len([]rune(content)) > maxContentRunes {
		errs.Add("content", "Message is too long")
	}

	if len(attachments) > maxAttachments {
		errs.Add("attachments", fmt.Sprintf("At most %d attachments per message", maxAttachments))
		return errs
	}

	for i, a := range attachments {
		if strings.TrimSpace(a.URL) == "" {
			errs.Add(fmt.Sprintf("attachments[%d].url", i), "Attachment URL is required")
		} else if u, err := url.Parse(a.URL); err != nil || u.Scheme == "" || u.Host == "" {
			errs.Add(fmt.Sprintf("attachments[%d].url", i), "Attachment URL must be absolute")
		}
		if strings.TrimSpace(a.StorageID) == "" {
			errs.Add(fmt.Sprintf("attachments[%d].storage_id", i), "Attachment storage ID is required")
		}
		if strings.TrimSpace(a.MediaType) == "" {
			errs.Add(fmt.Sprintf("attachments[%d].media_type", i), "Attachment media type is required")
		}
	}

	return errs
}
