package mysql

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew_UnreachableServer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	db, err := New(ctx, "root:secret@tcp(127.0.0.1:1)/aichat?parseTime=true&timeout=1s")
	require.Error(t, err)
	require.Nil(t, db)
	require.Less(t, time.Since(start), 5*time.Second)
}
