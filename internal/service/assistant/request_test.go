package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestInvocation(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want Invocation
	}{
		{
			name: "legacy prompt",
			req:  Request{Prompt: "  ciao  "},
			want: LegacyRequest{Prompt: "ciao"},
		},
		{
			name: "chat id wins over prompt",
			req:  Request{Prompt: "ciao", ChatID: "room1", UserPrompt: "domanda"},
			want: TurnRequest{RoomID: "room1", UserPrompt: "domanda", Docs: []string{}},
		},
		{
			name: "memory turn with docs",
			req: Request{
				ChatID:     " room1 ",
				UserPrompt: " domanda ",
				History:    "mario: ciao\n",
				Docs:       []string{" doc ", "", "  "},
			},
			want: TurnRequest{RoomID: "room1", UserPrompt: "domanda", History: "mario: ciao", Docs: []string{"doc"}},
		},
		{
			name: "empty body is a turn",
			req:  Request{},
			want: TurnRequest{Docs: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.Invocation())
		})
	}
}
