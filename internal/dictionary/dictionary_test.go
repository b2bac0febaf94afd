package dictionary_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"shiritori/internal/dictionary"
	"shiritori/internal/dictionary/mocks"
)

func newDictionary(t *testing.T, src dictionary.Source) *dictionary.Dictionary {
	t.Helper()
	d, err := dictionary.New(&dictionary.Config{
		Source: src,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return d
}

func TestDictionaryPassesVerdictThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockSource(ctrl)
	src.EXPECT().Check(gomock.Any(), "train").Return(true, nil)
	src.EXPECT().Check(gomock.Any(), "xyzzy").Return(false, nil)

	d := newDictionary(t, src)

	assert.True(t, d.Lookup(context.Background(), "train"))
	assert.False(t, d.Lookup(context.Background(), "xyzzy"))
}

func TestDictionaryCollapsesErrorsToFalse(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockSource(ctrl)
	src.EXPECT().Check(gomock.Any(), "train").Return(true, errors.New("connection reset"))

	d := newDictionary(t, src)

	assert.False(t, d.Lookup(context.Background(), "train"))
}

func TestDictionaryAppliesTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockSource(ctrl)
	src.EXPECT().Check(gomock.Any(), "slow").DoAndReturn(func(ctx context.Context, _ string) (bool, error) {
		_, ok := ctx.Deadline()
		assert.True(t, ok, "lookup context should carry a deadline")
		return true, nil
	})

	d := newDictionary(t, src)
	assert.True(t, d.Lookup(context.Background(), "slow"))
}

func TestNewRequiresSource(t *testing.T) {
	_, err := dictionary.New(nil)
	assert.Error(t, err)

	_, err = dictionary.New(&dictionary.Config{})
	assert.Error(t, err)
}

func TestLookupFunc(t *testing.T) {
	var l dictionary.Lookup = dictionary.LookupFunc(func(_ context.Context, w string) bool {
		return w == "yes"
	})
	assert.True(t, l.Lookup(context.Background(), "yes"))
	assert.False(t, l.Lookup(context.Background(), "no"))
}
