// internal/workers/dialog/dialog-hook/responses.go
package dialoghook

import "dining-concierge/internal/models"

func plainText(content string) []models.Message {
	return []models.Message{{ContentType: models.ContentTypePlainText, Content: content}}
}

// closeIntent ends the intent as fulfilled with a single message.
func closeIntent(event *models.HookEvent, content string) *models.HookResponse {
	return &models.HookResponse{
		SessionState: models.SessionState{
			DialogAction: &models.DialogAction{Type: models.DialogActionClose},
			Intent: models.Intent{
				Name:  event.SessionState.Intent.Name,
				State: models.IntentStateFulfilled,
			},
			SessionAttributes: event.SessionState.SessionAttributes,
		},
		Messages: plainText(content),
	}
}

// delegate hands control back to the engine with the intent unchanged.
func delegate(event *models.HookEvent) *models.HookResponse {
	return &models.HookResponse{
		SessionState: models.SessionState{
			DialogAction:      &models.DialogAction{Type: models.DialogActionDelegate},
			Intent:            event.SessionState.Intent,
			SessionAttributes: event.SessionState.SessionAttributes,
		},
	}
}

func elicitSlot(event *models.HookEvent, slot, content string) *models.HookResponse {
	return &models.HookResponse{
		SessionState: models.SessionState{
			DialogAction: &models.DialogAction{
				Type:         models.DialogActionElicitSlot,
				SlotToElicit: slot,
			},
			Intent:            event.SessionState.Intent,
			SessionAttributes: event.SessionState.SessionAttributes,
		},
		Messages: plainText(content),
	}
}
