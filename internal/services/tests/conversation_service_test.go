package services_test

import (
	"testing"

	"pressroom_ai_go_backend/cmd/api/config"
	"pressroom_ai_go_backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConversationService() (*services.ConversationService, *fakeConversationStore) {
	store := newFakeConversationStore()
	return services.NewConversationService(store, config.NewConfig()), store
}

func TestCreateConversationGeneratesIDAndDefaultTitle(t *testing.T) {
	svc, _ := newConversationService()

	conv, err := svc.CreateConversation("", "user-1", "one", "")
	require.NoError(t, err)

	assert.NotEmpty(t, conv.ConversationID)
	assert.Contains(t, conv.Title, "새 대화")
	assert.Equal(t, "one", conv.EngineType)
}

func TestCreateConversationIsIdempotent(t *testing.T) {
	svc, store := newConversationService()

	first, err := svc.CreateConversation("conv-1", "user-1", "one", "원래 제목")
	require.NoError(t, err)

	second, err := svc.CreateConversation("conv-1", "user-1", "one", "다른 제목")
	require.NoError(t, err)

	assert.Equal(t, first.ConversationID, second.ConversationID)
	assert.Equal(t, "원래 제목", second.Title)
	assert.Equal(t, 1, store.saveCount)
}

func TestCreateConversationRequiresUser(t *testing.T) {
	svc, _ := newConversationService()

	_, err := svc.CreateConversation("", "", "one", "")
	assert.Error(t, err)
}

func TestGetConversationNotFound(t *testing.T) {
	svc, _ := newConversationService()

	_, err := svc.GetConversation("missing", "user-1")
	assert.Error(t, err)
}

func TestGetConversationOwnershipMismatch(t *testing.T) {
	svc, _ := newConversationService()

	_, err := svc.CreateConversation("conv-1", "user-1", "one", "제목")
	require.NoError(t, err)

	_, err = svc.GetConversation("conv-1", "intruder")
	assert.Error(t, err)
}

func TestUpdateTitleAndDelete(t *testing.T) {
	svc, _ := newConversationService()

	_, err := svc.CreateConversation("conv-1", "user-1", "one", "제목")
	require.NoError(t, err)

	require.NoError(t, svc.UpdateTitle("conv-1", "user-1", "새 제목"))
	conv, err := svc.GetConversation("conv-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "새 제목", conv.Title)

	require.NoError(t, svc.DeleteConversation("conv-1", "user-1"))
	_, err = svc.GetConversation("conv-1", "user-1")
	assert.Error(t, err)
}

func TestListConversationsFiltersByEngine(t *testing.T) {
	svc, _ := newConversationService()

	_, err := svc.CreateConversation("conv-1", "user-1", "one", "a")
	require.NoError(t, err)
	_, err = svc.CreateConversation("conv-2", "user-1", "two", "b")
	require.NoError(t, err)

	all, err := svc.ListConversations("user-1", "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := svc.ListConversations("user-1", "one", 0)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "conv-1", filtered[0].ConversationID)
}
