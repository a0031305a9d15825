package fun

import (
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/pscheid92/nano/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixed(i int) func(int) int {
	return func(int) int { return i }
}

func TestAsk(t *testing.T) {
	svc := &Service{intn: fixed(0)}

	assert.Equal(t, "It is certain.", svc.Ask("will it rain?", false))
	assert.Equal(t, "> will it rain?\n> really?\n\nIt is certain.", svc.Ask("will it rain?\nreally?", true))

	svc.intn = fixed(19)
	assert.Equal(t, "Very doubtful.", svc.Ask("x", false))
}

func TestAsk_RealRandomStaysInRange(t *testing.T) {
	svc := NewService("")
	for range 100 {
		assert.Contains(t, Answers, svc.Ask("?", false))
	}
}

func TestSay(t *testing.T) {
	got, err := Say("hello @everyone")
	require.NoError(t, err)
	assert.Equal(t, "hello @everyone", got)

	_, err = Say("   ")
	require.Error(t, err)
	assert.Equal(t, SayFailure, apperrors.UserMessage(err, "x"))
}

func TestTopic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topics.txt")
	require.NoError(t, os.WriteFile(path, []byte("What is your favourite anime?\n\nCats or dogs?\n"), 0o600))

	svc := NewService(path)
	svc.intn = fixed(1)

	got, err := svc.Topic()
	require.NoError(t, err)
	assert.Equal(t, "Cats or dogs?", got)
}

func TestTopic_Failures(t *testing.T) {
	_, err := NewService(filepath.Join(t.TempDir(), "missing.txt")).Topic()
	require.Error(t, err)
	assert.Equal(t, TopicFailure, apperrors.UserMessage(err, TopicFailure))

	empty := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	_, err = NewService(empty).Topic()
	require.Error(t, err)
}
