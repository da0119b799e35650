package s3

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"

	"github.com/Conte777/mediaflow/config"
)

func newTestClient(t *testing.T, prefix string) *Client {
	t.Helper()

	client, err := NewClient(&config.S3Config{
		Endpoint:  "localhost:9000",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "media",
		Prefix:    prefix,
	}, afero.NewMemMapFs(), zerolog.Nop())
	require.NoError(t, err)
	return client
}

func TestClient_ObjectKey(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		rel    string
		want   string
	}{
		{name: "no prefix", rel: "News/Photos/a.jpg", want: "News/Photos/a.jpg"},
		{name: "prefix", prefix: "/backup/", rel: "News/a.jpg", want: "backup/News/a.jpg"},
		{name: "escaping", rel: "../../etc/passwd", want: "etc/passwd"},
		{name: "leading slash", rel: "/a.jpg", want: "a.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, newTestClient(t, tt.prefix).ObjectKey(tt.rel))
		})
	}
}

func TestClient_MirrorFile_MissingFile(t *testing.T) {
	client := newTestClient(t, "")

	err := client.MirrorFile(context.Background(), "/nope.jpg", "nope.jpg")
	assert.Error(t, err)
}

func TestNewMirrorFx_Disabled(t *testing.T) {
	lc := fxtest.NewLifecycle(t)

	mirror, err := NewMirrorFx(lc, &config.S3Config{}, afero.NewMemMapFs(), zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, mirror)
}
