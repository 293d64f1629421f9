package bearer_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-auth-bridge/bearer"
	autherrors "github.com/jrsteele09/go-auth-bridge/internal/errors"
	"github.com/stretchr/testify/require"
)

func testKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, 32)
}

func newCodec(t *testing.T) *bearer.Codec {
	t.Helper()
	sealer, err := bearer.NewSealer(testKey(7))
	require.NoError(t, err)
	return bearer.NewCodec(sealer)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	codec := newCodec(t)

	token, err := codec.Encode(bearer.Credentials{
		Identifier:  "alice.example.com",
		Secret:      "app-pass-1234",
		Preferences: json.RawMessage(`{"lang":"en"}`),
		SubjectID:   "did:plc:alice",
	})
	require.NoError(t, err)

	creds, err := codec.Decode(bearer.Scheme + token)
	require.NoError(t, err)
	require.Equal(t, "alice.example.com", creds.Identifier)
	require.Equal(t, "app-pass-1234", creds.Secret)
	require.Equal(t, "did:plc:alice", creds.SubjectID)
	require.JSONEq(t, `{"lang":"en"}`, string(creds.Preferences))
}

func TestDecodeDefaultsPreferencesAndSubject(t *testing.T) {
	codec := newCodec(t)

	token, err := codec.Encode(bearer.Credentials{Identifier: "bob", Secret: "pw"})
	require.NoError(t, err)

	creds, err := codec.Decode(bearer.Scheme + token)
	require.NoError(t, err)
	require.Empty(t, creds.SubjectID)
	require.JSONEq(t, `{}`, string(creds.Preferences))
}

func TestDecodeMalformed(t *testing.T) {
	codec := newCodec(t)

	valid, err := codec.Encode(bearer.Credentials{Identifier: "bob", Secret: "pw"})
	require.NoError(t, err)

	tampered := []byte(valid)
	if tampered[10] == 'A' {
		tampered[10] = 'B'
	} else {
		tampered[10] = 'A'
	}

	other, err := bearer.NewSealer(testKey(9))
	require.NoError(t, err)
	foreign, err := bearer.NewCodec(other).Encode(bearer.Credentials{Identifier: "bob", Secret: "pw"})
	require.NoError(t, err)

	sealer, err := bearer.NewSealer(testKey(7))
	require.NoError(t, err)
	notJSON, err := sealer.Pack([]byte("not json"))
	require.NoError(t, err)
	missingSecret, err := sealer.Pack([]byte(`{"identifier":"bob"}`))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"empty header", ""},
		{"wrong scheme", "Basic " + valid},
		{"lowercase scheme", "bearer " + valid},
		{"prefix only", bearer.Scheme},
		{"not base64", bearer.Scheme + "!!!"},
		{"tampered", bearer.Scheme + string(tampered)},
		{"foreign key", bearer.Scheme + foreign},
		{"not json", bearer.Scheme + notJSON},
		{"missing secret", bearer.Scheme + missingSecret},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds, err := codec.Decode(tt.header)
			require.Nil(t, creds)
			require.ErrorIs(t, err, autherrors.ErrMalformedToken)
		})
	}
}

func TestNewSealerRejectsShortKey(t *testing.T) {
	_, err := bearer.NewSealer([]byte("short"))
	require.Error(t, err)
}

func TestPackIsNotDeterministic(t *testing.T) {
	sealer, err := bearer.NewSealer(testKey(1))
	require.NoError(t, err)

	a, err := sealer.Pack([]byte("same"))
	require.NoError(t, err)
	b, err := sealer.Pack([]byte("same"))
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	out, err := sealer.Unpack(a)
	require.NoError(t, err)
	require.Equal(t, []byte("same"), out)
}
