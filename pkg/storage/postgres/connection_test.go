package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPingMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	return db, mock
}

func TestParseReplicaURLs(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty string", input: "", expected: nil},
		{name: "single URL", input: "postgres://localhost:5432/db", expected: []string{"postgres://localhost:5432/db"}},
		{
			name:     "URLs with whitespace",
			input:    " postgres://host1:5432/db , postgres://host2:5432/db ",
			expected: []string{"postgres://host1:5432/db", "postgres://host2:5432/db"},
		},
		{
			name:     "URLs with empty entries",
			input:    "postgres://host1:5432/db,,postgres://host2:5432/db,",
			expected: []string{"postgres://host1:5432/db", "postgres://host2:5432/db"},
		},
		{name: "only commas and whitespace", input: " , , , ", expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseReplicaURLs(tt.input))
		})
	}
}

func TestNewConnectionManager_UnreachablePrimary(t *testing.T) {
	config := ConnectionConfig{
		PrimaryURL: "postgres://nonexistent:9999/tally?connect_timeout=1",
		MaxConns:   4,
		MinConns:   1,
		Timeout:    2 * time.Second,
	}

	cm, err := NewConnectionManager(config, logrus.New())
	assert.Error(t, err)
	assert.Nil(t, cm)
	assert.Contains(t, err.Error(), "failed to ping primary")
}

func TestConnectionManager_Replica(t *testing.T) {
	t.Run("no replicas - fallback to primary", func(t *testing.T) {
		primaryDB := &sql.DB{}
		cm := &ConnectionManager{primary: primaryDB}

		assert.Equal(t, primaryDB, cm.Replica())
	})

	t.Run("round-robin selection with multiple replicas", func(t *testing.T) {
		replica1, replica2, replica3 := &sql.DB{}, &sql.DB{}, &sql.DB{}
		cm := &ConnectionManager{
			primary:  &sql.DB{},
			replicas: []*sql.DB{replica1, replica2, replica3},
		}

		selections := make(map[*sql.DB]int)
		for i := 0; i < 30; i++ {
			selections[cm.Replica()]++
		}

		assert.Equal(t, 10, selections[replica1])
		assert.Equal(t, 10, selections[replica2])
		assert.Equal(t, 10, selections[replica3])
	})

	t.Run("concurrent replica selection", func(t *testing.T) {
		replica1, replica2 := &sql.DB{}, &sql.DB{}
		cm := &ConnectionManager{
			primary:  &sql.DB{},
			replicas: []*sql.DB{replica1, replica2},
		}

		var wg sync.WaitGroup
		results := make(chan *sql.DB, 100)
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results <- cm.Replica()
			}()
		}
		wg.Wait()
		close(results)

		selections := make(map[*sql.DB]int)
		for replica := range results {
			selections[replica]++
		}
		assert.Equal(t, 50, selections[replica1])
		assert.Equal(t, 50, selections[replica2])
	})
}

func TestConnectionManager_HealthCheck(t *testing.T) {
	t.Run("healthy primary and replicas", func(t *testing.T) {
		primaryDB, primaryMock := newPingMock(t)
		defer primaryDB.Close()
		replicaDB, replicaMock := newPingMock(t)
		defer replicaDB.Close()

		primaryMock.ExpectPing()
		replicaMock.ExpectPing()

		cm := &ConnectionManager{primary: primaryDB, replicas: []*sql.DB{replicaDB}}
		assert.NoError(t, cm.HealthCheck(context.Background()))

		assert.NoError(t, primaryMock.ExpectationsWereMet())
		assert.NoError(t, replicaMock.ExpectationsWereMet())
	})

	t.Run("unhealthy primary", func(t *testing.T) {
		primaryDB, primaryMock := newPingMock(t)
		defer primaryDB.Close()
		primaryMock.ExpectPing().WillReturnError(errors.New("connection refused"))

		cm := &ConnectionManager{primary: primaryDB}
		err := cm.HealthCheck(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "primary unhealthy")
	})

	t.Run("one of two replicas down is tolerated", func(t *testing.T) {
		primaryDB, primaryMock := newPingMock(t)
		defer primaryDB.Close()
		replica1DB, replica1Mock := newPingMock(t)
		defer replica1DB.Close()
		replica2DB, replica2Mock := newPingMock(t)
		defer replica2DB.Close()

		primaryMock.ExpectPing()
		replica1Mock.ExpectPing().WillReturnError(errors.New("timeout"))
		replica2Mock.ExpectPing()

		cm := &ConnectionManager{primary: primaryDB, replicas: []*sql.DB{replica1DB, replica2DB}}
		assert.NoError(t, cm.HealthCheck(context.Background()))
	})

	t.Run("all replicas down", func(t *testing.T) {
		primaryDB, primaryMock := newPingMock(t)
		defer primaryDB.Close()
		replicaDB, replicaMock := newPingMock(t)
		defer replicaDB.Close()

		primaryMock.ExpectPing()
		replicaMock.ExpectPing().WillReturnError(errors.New("timeout"))

		cm := &ConnectionManager{primary: primaryDB, replicas: []*sql.DB{replicaDB}}
		err := cm.HealthCheck(context.Background())
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "all replicas unhealthy"))
	})
}

func TestConnectionManager_RemoveUnhealthyReplicas(t *testing.T) {
	healthyDB, healthyMock := newPingMock(t)
	defer healthyDB.Close()
	deadDB, deadMock := newPingMock(t)

	healthyMock.ExpectPing()
	deadMock.ExpectPing().WillReturnError(errors.New("gone"))
	deadMock.ExpectClose()

	cm := &ConnectionManager{
		primary:  &sql.DB{},
		replicas: []*sql.DB{healthyDB, deadDB},
		logger:   logrus.New(),
	}

	removed := cm.RemoveUnhealthyReplicas(context.Background())
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, cm.ReplicaCount())
	assert.Equal(t, healthyDB, cm.Replica())
}

func TestConnectionManager_Close(t *testing.T) {
	primaryDB, primaryMock := newPingMock(t)
	replicaDB, replicaMock := newPingMock(t)

	primaryMock.ExpectClose()
	replicaMock.ExpectClose()

	cm := &ConnectionManager{primary: primaryDB, replicas: []*sql.DB{replicaDB}}
	require.NoError(t, cm.Close())
	assert.Equal(t, 0, cm.ReplicaCount())

	assert.NoError(t, primaryMock.ExpectationsWereMet())
	assert.NoError(t, replicaMock.ExpectationsWereMet())
}

func TestConnectionManager_StartHealthCheckRoutine_StopsOnCancel(t *testing.T) {
	cm := &ConnectionManager{primary: &sql.DB{}, logger: logrus.New()}

	ctx, cancel := context.WithCancel(context.Background())
	cm.StartHealthCheckRoutine(ctx, 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	cancel()

	assert.Equal(t, 0, cm.ReplicaCount())
}
