package cli

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/rileyhilliard/sysdash/internal/api"
	"github.com/rileyhilliard/sysdash/internal/api/apitest"
	"github.com/rileyhilliard/sysdash/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunTerminate(t *testing.T) {
	srv := apitest.New(t)
	var out bytes.Buffer

	err := runTerminate(context.Background(), api.NewClient(srv.URL), 4242, &out)
	require.NoError(t, err)

	assert.Equal(t, []int{4242}, srv.Terminated())
	assert.Contains(t, out.String(), "Sent terminate to pid 4242")
}

func TestRunTerminate_Failure(t *testing.T) {
	srv := apitest.New(t)
	srv.SetTerminate(http.StatusForbidden, `{"error": "not allowed"}`)
	var out bytes.Buffer

	err := runTerminate(context.Background(), api.NewClient(srv.URL), 7, &out)
	require.Error(t, err)

	assert.True(t, errors.IsCode(err, errors.ErrHTTP))
	assert.Contains(t, err.Error(), "Failed to terminate pid 7")
	assert.Contains(t, err.Error(), "403")
	assert.Empty(t, out.String())
}

func TestParsePID(t *testing.T) {
	tests := []struct {
		arg     string
		want    int
		wantErr bool
	}{
		{"4242", 4242, false},
		{"1", 1, false},
		{"0", 0, true},
		{"-5", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parsePID(tt.arg)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrConfig))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTerminateCommand_InvalidPIDSkipsConfig(t *testing.T) {
	isolateConfig(t)

	err := terminateCommand(context.Background(), "nope", &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'nope' is not a valid pid")
}
