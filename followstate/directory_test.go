package followstate

import (
	"context"
	"errors"
	"testing"

	"designhive/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory_NameFallsBackToEmail(t *testing.T) {
	api := &fakeAPI{
		allUsers: func(ctx context.Context) ([]model.UserSummary, error) {
			return []model.UserSummary{
				{ID: uuid.New(), Email: "a@example.com", Username: "alice"},
			}, nil
		},
	}

	dir := NewDirectory(api)
	require.NoError(t, dir.Load(context.Background()))

	assert.Equal(t, "alice", dir.Name("a@example.com"))
	// 映射未命中时原样显示邮箱，永不为空
	assert.Equal(t, "ghost@example.com", dir.Name("ghost@example.com"))
}

func TestDirectory_LoadFailureKeepsFallback(t *testing.T) {
	api := &fakeAPI{
		allUsers: func(ctx context.Context) ([]model.UserSummary, error) {
			return nil, errors.New("backend down")
		},
	}

	dir := NewDirectory(api)
	require.Error(t, dir.Load(context.Background()))

	assert.Equal(t, "a@example.com", dir.Name("a@example.com"))
}
