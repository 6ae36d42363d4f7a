package uriproto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		wantReq Request
		wantErr bool
	}{
		{
			name:    "verb only",
			raw:     "sw:install",
			wantReq: Request{Verb: "install", Tokens: []string{}},
		},
		{
			name:    "verb plus tokens",
			raw:     "sw:install/org.sw.demo.zlib/1.2.3",
			wantReq: Request{Verb: "install", Tokens: []string{"org.sw.demo.zlib", "1.2.3"}},
		},
		{
			name:    "percent-decoded tokens",
			raw:     "sw:open/a%2Fb/c%20d",
			wantReq: Request{Verb: "open", Tokens: []string{"a/b", "c d"}},
		},
		{
			name:    "kickout forwards everything",
			raw:     "sw:" + KickOut + "/gui/window/resize",
			wantReq: Request{Verb: KickOut, Tokens: []string{"gui", "window", "resize"}},
		},
		{
			name:    "authority-style prefix is tolerated",
			raw:     "sw://install/foo",
			wantReq: Request{Verb: "install", Tokens: []string{"foo"}},
		},
		{
			name:    "missing scheme",
			raw:     "install/foo",
			wantErr: true,
		},
		{
			name:    "empty verb",
			raw:     "sw:",
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode(tc.raw)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantReq.Verb, got.Verb)
			assert.Equal(t, tc.wantReq.Tokens, got.Forwarded())
		})
	}
}
