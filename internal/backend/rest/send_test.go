package rest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duties/internal/service"
)

func TestSend_EncodeFailureIsNetworkError(t *testing.T) {
	c, err := New("http://localhost:3001/api")
	require.NoError(t, err)

	_, err = post[struct{}](context.Background(), c, "/lists", map[string]any{"name": make(chan int)})
	require.Error(t, err)

	ne, ok := service.AsNetworkError(err)
	require.True(t, ok)
	assert.Equal(t, 0, ne.StatusCode)
	assert.Equal(t, service.GenericErrorMessage, ne.Message)
	assert.Contains(t, ne.Err.Error(), "encode request")
}
