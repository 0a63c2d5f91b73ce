package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutrisense-server-go/internal/platform/errors"
)

type fakeProvider struct {
	name   string
	reply  string
	err    error
	calls  int
	tCalls int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Chat(ctx context.Context, req Request) (string, error) {
	f.calls++
	return f.reply, f.err
}

func (f *fakeProvider) Transcribe(ctx context.Context, req TranscriptionRequest) (string, error) {
	f.tCalls++
	return f.reply, f.err
}

type nopLogger struct{}

func (nopLogger) WarnTag(string, string, ...interface{}) {}
func (nopLogger) InfoTag(string, string, ...interface{}) {}

func rateLimited() error {
	return errors.New(errors.KindRateLimit, "provider.chat", MsgRateLimited)
}

func quotaExceeded() error {
	return errors.New(errors.KindQuota, "provider.chat", MsgQuota)
}

func unavailable() error {
	return errors.New(errors.KindProvider, "provider.chat", MsgUnavailable)
}

func TestDispatch_FirstProviderSucceeds(t *testing.T) {
	primary := &fakeProvider{name: "gateway", reply: "ok"}
	backup := &fakeProvider{name: "openai", reply: "unused"}
	d := NewDispatcher([]Provider{primary, backup}, nopLogger{})

	got, err := d.Chat(context.Background(), Request{UserText: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 1, primary.calls)
	assert.Zero(t, backup.calls)
}

func TestDispatch_FallsBackOnRetryableFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"rate limited", rateLimited()},
		{"quota exceeded", quotaExceeded()},
		{"unavailable", unavailable()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary := &fakeProvider{name: "gateway", err: tt.err}
			backup := &fakeProvider{name: "openai", reply: "rescued"}
			d := NewDispatcher([]Provider{primary, backup}, nopLogger{})

			got, err := d.Chat(context.Background(), Request{UserText: "hi"})
			require.NoError(t, err)
			assert.Equal(t, "rescued", got)
			assert.Equal(t, 1, primary.calls)
			assert.Equal(t, 1, backup.calls)
		})
	}
}

func TestDispatch_LastProviderErrorSurfaces(t *testing.T) {
	primary := &fakeProvider{name: "gateway", err: unavailable()}
	backup := &fakeProvider{name: "openai", err: rateLimited()}
	d := NewDispatcher([]Provider{primary, backup}, nopLogger{})

	_, err := d.Chat(context.Background(), Request{UserText: "hi"})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindRateLimit))
	assert.Equal(t, MsgRateLimited, errors.UserMessage(err))
}

func TestDispatch_NonRetryableStopsChain(t *testing.T) {
	primary := &fakeProvider{name: "gateway", err: errors.New(errors.KindParse, "provider.chat", "garbage")}
	backup := &fakeProvider{name: "openai", reply: "unused"}
	d := NewDispatcher([]Provider{primary, backup}, nopLogger{})

	_, err := d.Chat(context.Background(), Request{UserText: "hi"})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindParse))
	assert.Zero(t, backup.calls)
}

func TestDispatch_EmptyChain(t *testing.T) {
	d := NewDispatcher(nil, nopLogger{})

	_, err := d.Chat(context.Background(), Request{UserText: "hi"})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindConfig))
}

func TestDispatch_TranscribeUsesChain(t *testing.T) {
	primary := &fakeProvider{name: "gateway", err: quotaExceeded()}
	backup := &fakeProvider{name: "openai", reply: "sugar, salt"}
	d := NewDispatcher([]Provider{primary, backup}, nopLogger{})

	got, err := d.Transcribe(context.Background(), TranscriptionRequest{Audio: []byte{1}})
	require.NoError(t, err)
	assert.Equal(t, "sugar, salt", got)
	assert.Equal(t, 1, primary.tCalls)
	assert.Equal(t, 1, backup.tCalls)
}

func TestNames(t *testing.T) {
	d := NewDispatcher([]Provider{
		&fakeProvider{name: "gateway"},
		&fakeProvider{name: "openai"},
	}, nopLogger{})
	assert.Equal(t, []string{"gateway", "openai"}, d.Names())
}
