package domain

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestFailureText(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"status with detail", &CompletionError{Kind: FailureStatus, Status: 429, Detail: "Rate limit exceeded"}, "Rate limit exceeded"},
		{"status without detail", &CompletionError{Kind: FailureStatus, Status: 500}, MsgServerError},
		{"malformed", &CompletionError{Kind: FailureMalformed, Err: errors.New("eof")}, MsgServerError},
		{"timeout", &CompletionError{Kind: FailureTimeout}, MsgTimeout},
		{"transport", &CompletionError{Kind: FailureTransport, Err: errors.New("refused")}, MsgTransportError},
		{"wrapped", errors.Wrap(&CompletionError{Kind: FailureStatus, Detail: "x"}, "submit"), "x"},
		{"bare deadline", context.DeadlineExceeded, MsgTimeout},
		{"anything else", errors.New("boom"), MsgTransportError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, FailureText(tc.err))
		})
	}
}

func TestToChatMessagesKeepsOrderAndRoles(t *testing.T) {
	transcript := []Message{
		{Text: "¡Hola! Soy Aria. ¿En qué puedo ayudarte hoy?", Sender: SenderBot},
		{Text: "hola", Sender: SenderUser},
		{Text: MsgTransportError, Sender: SenderBot, Failed: true},
	}

	got := ToChatMessages(transcript)
	require.Equal(t, []ChatMessage{
		{Role: RoleAssistant, Content: transcript[0].Text},
		{Role: RoleUser, Content: "hola"},
		{Role: RoleAssistant, Content: MsgTransportError},
	}, got)

	require.Empty(t, ToChatMessages(nil))
	require.NotNil(t, ToChatMessages(nil))
}

func TestEmailHelpers(t *testing.T) {
	require.Equal(t, "ana", EmailLocalPart("ana@example.com"))
	require.Equal(t, "ana", EmailLocalPart("ana"))
	require.Equal(t, "ana@example.com", NormalizeEmail("  Ana@Example.COM "))
	require.True(t, User{ID: "u", Email: "a@b"}.Valid())
	require.False(t, User{ID: "u"}.Valid())
}

func TestBotCloneDetachesDocuments(t *testing.T) {
	b := Bot{Name: "Aria", Documents: []string{"faq.pdf"}}
	c := b.Clone()
	c.Documents[0] = "otro.pdf"
	require.Equal(t, "faq.pdf", b.Documents[0])
	require.Equal(t, []string{}, Bot{}.Clone().Documents)
}
