package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"":                   "",
		"ab":                 "***",
		"nelly":              "n…y",
		"Nelly@Example.com":  "n…@e….com",
		"a@b.io":             "a@b.io",
		"  x.y@mail.co.uk  ": "x…@m….co.uk",
		"@nouser.com":        "@…m",
	}
	for in, want := range cases {
		require.Equal(t, want, MaskEmail(in), in)
	}
}

func TestContextLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	restore := Replace(zap.New(core))
	defer restore()

	ctx := ToContext(context.Background(), L().With(UserID("42")))
	From(ctx).Info("hello", Email("nelly@example.com"), Provider("discord"))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "42", fields["user_id"])
	require.Equal(t, "n…@e….com", fields["email"])
	require.Equal(t, "discord", fields["provider"])

	// sin logger en ctx => singleton
	require.Same(t, L(), From(context.Background()))
}
