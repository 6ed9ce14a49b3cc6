package lib

import (
	"context"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func TestPingRedis(t *testing.T) {
	client, mock := redismock.NewClientMock()
	NewRedisClient(client)
	t.Cleanup(func() { NewRedisClient(nil) })

	mock.ExpectPing().SetVal("PONG")
	assert.NoError(t, PingRedis(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
