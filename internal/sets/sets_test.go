package sets

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/pscheid92/nano/internal/domain"
	apperrors "github.com/pscheid92/nano/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	sets map[string]map[string]bool
	err  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{sets: make(map[string]map[string]bool)}
}

func (f *fakeStore) Add(_ context.Context, ownerID, name string, elements []string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	key := ownerID + ":" + name
	if f.sets[key] == nil {
		f.sets[key] = make(map[string]bool)
	}
	var n int64
	for _, e := range elements {
		if !f.sets[key][e] {
			f.sets[key][e] = true
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) Remove(_ context.Context, ownerID, name string, elements []string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	key := ownerID + ":" + name
	var n int64
	for _, e := range elements {
		if f.sets[key][e] {
			delete(f.sets[key], e)
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) Members(_ context.Context, ownerID, name string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []string
	for e := range f.sets[ownerID+":"+name] {
		out = append(out, e)
	}
	slices.Sort(out)
	return out, nil
}

var owner = domain.User{ID: "42", Username: "nano"}

func TestAddRemoveList(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	got, err := svc.Add(ctx, owner, "snacks", []string{"pocky", " taiyaki ", "", "pocky"})
	require.NoError(t, err)
	assert.Equal(t, "Successfully added 2 elements", got)

	got, err = svc.List(ctx, owner, "snacks")
	require.NoError(t, err)
	assert.Equal(t, "snacks values:\n- pocky\n- taiyaki", got)

	got, err = svc.Remove(ctx, owner, "snacks", []string{"pocky", "melonpan"})
	require.NoError(t, err)
	assert.Equal(t, "Successfully removed 1 elements", got)

	got, err = svc.List(ctx, owner, "snacks")
	require.NoError(t, err)
	assert.Equal(t, "snacks values:\n- taiyaki", got)
}

func TestListIsPerOwner(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	_, err := svc.Add(ctx, owner, "snacks", []string{"pocky"})
	require.NoError(t, err)

	got, err := svc.List(ctx, domain.User{ID: "7"}, "snacks")
	require.NoError(t, err)
	assert.Equal(t, "snacks values:", got)
}

func TestMissingName(t *testing.T) {
	svc := NewService(newFakeStore())

	_, err := svc.Add(context.Background(), owner, "  ", []string{"a"})
	require.Error(t, err)
	assert.Equal(t, MissingName, apperrors.UserMessage(err, FailureMessage))
}

func TestStoreError(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("down")
	svc := NewService(store)

	_, err := svc.List(context.Background(), owner, "snacks")
	require.Error(t, err)
	assert.Equal(t, FailureMessage, apperrors.UserMessage(err, FailureMessage))
}

func TestElementCap(t *testing.T) {
	_, out, err := normalize("x", []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11"})
	require.NoError(t, err)
	assert.Len(t, out, MaxElements)
}
