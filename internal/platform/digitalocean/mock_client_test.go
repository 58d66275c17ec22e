package digitalocean

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockClient_Defaults(t *testing.T) {
	m := &MockClient{}
	ctx := context.Background()

	images, err := m.ListImages(ctx)
	require.NoError(t, err)
	assert.Equal(t, "CentOS", images[0].Distribution)

	server, err := m.CreateServer(ctx, ServerCreateOpts{Name: "web-1", Region: "sfo1"})
	require.NoError(t, err)
	assert.Equal(t, "web-1", server.Name)

	require.NoError(t, m.DestroyServer(ctx, server.ID))
	assert.Equal(t, 1, m.Calls("ListImages"))
	assert.Equal(t, 1, m.Calls("CreateServer"))
	assert.Equal(t, 1, m.Calls("DestroyServer"))
	assert.Zero(t, m.Calls("DeleteKey"))
}

func TestMockClient_CustomFunc(t *testing.T) {
	expectedErr := errors.New("custom error")
	m := &MockClient{
		GetServerFunc: func(_ context.Context, id string) (*Server, error) {
			assert.Equal(t, "42", id)
			return nil, expectedErr
		},
	}

	_, err := m.GetServer(context.Background(), "42")
	assert.ErrorIs(t, err, expectedErr)
}
