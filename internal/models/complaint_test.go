package models_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"complaintdesk/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestComplaintStructTags guards the column and JSON names the dashboard relies on.
func TestComplaintStructTags(t *testing.T) {
	complaintType := reflect.TypeOf(models.Complaint{})

	idField, found := complaintType.FieldByName("ID")
	require.True(t, found)
	assert.Contains(t, idField.Tag.Get("gorm"), "primaryKey")
	assert.Equal(t, "id", idField.Tag.Get("json"))

	for field, jsonName := range map[string]string{
		"ChatID":         "chat_id",
		"SenderUsername": "sender_username",
		"ModelReply":     "model_reply",
		"RepliedAt":      "replied_at",
		"ReplyText":      "reply_text",
		"ReplyMedia":     "reply_media",
	} {
		f, ok := complaintType.FieldByName(field)
		require.True(t, ok, field)
		assert.Equal(t, jsonName, f.Tag.Get("json"), field)
	}

	assert.Equal(t, "complaints", models.Complaint{}.TableName())
}

func TestComplaintStatus_Valid(t *testing.T) {
	assert.True(t, models.StatusPending.Valid())
	assert.True(t, models.StatusDone.Valid())
	assert.True(t, models.StatusDeleted.Valid())
	assert.False(t, models.ComplaintStatus("archived").Valid())
	assert.False(t, models.ComplaintStatus("").Valid())
}

func TestNewEvent_WrapsPayload(t *testing.T) {
	ev, err := models.NewEvent(models.EventNewComplaint, models.Complaint{ID: 7, ChatID: "42"})
	require.NoError(t, err)

	raw, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded struct {
		Event string `json:"event"`
		Data  struct {
			ID     uint   `json:"id"`
			ChatID string `json:"chat_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "new_complaint", decoded.Event)
	assert.Equal(t, uint(7), decoded.Data.ID)
	assert.Equal(t, "42", decoded.Data.ChatID)
}

func TestTypedErrors_MatchSentinels(t *testing.T) {
	cause := errors.New("connection refused")

	backendErr := fmt.Errorf("dispatch: %w", &models.BackendError{Op: "telegram send", Err: cause})
	assert.ErrorIs(t, backendErr, models.ErrBackendUnavailable)
	assert.ErrorIs(t, backendErr, cause)
	assert.NotErrorIs(t, backendErr, models.ErrPersistence)

	persistErr := &models.PersistenceError{Op: "create complaint", Err: cause}
	assert.ErrorIs(t, persistErr, models.ErrPersistence)
	assert.Equal(t, "create complaint: connection refused", persistErr.Error())

	var target *models.PersistenceError
	assert.True(t, errors.As(fmt.Errorf("wrapped: %w", persistErr), &target))
}
