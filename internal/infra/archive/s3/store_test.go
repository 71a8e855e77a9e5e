package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"ideospace/internal/archive/store"
)

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected bucket error")
	}
}

func TestMockStorePutGetListDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMockForTests()
	if s.Driver() != store.DriverS3 {
		t.Fatalf("driver = %s", s.Driver())
	}
	info, err := s.Put(ctx, "snapshots/000001.json", strings.NewReader(`{"revision":1}`), store.PutOptions{ContentType: "application/json"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "snapshots/000001.json" || info.Size != 14 || info.ContentType != "application/json" {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := s.Put(ctx, "snapshots/000001.json", strings.NewReader("again"), store.PutOptions{}); !errors.Is(err, store.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}

	_, rc, err := s.Get(ctx, "snapshots/000001.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != `{"revision":1}` {
		t.Fatalf("unexpected body %q", body)
	}

	if _, err := s.Put(ctx, "snapshots/000002.json", strings.NewReader(`{"revision":2}`), store.PutOptions{}); err != nil {
		t.Fatalf("put second: %v", err)
	}
	if _, err := s.Put(ctx, "other/file", strings.NewReader("other"), store.PutOptions{}); err != nil {
		t.Fatalf("put other: %v", err)
	}
	list, err := s.List(ctx, "snapshots/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Key != "snapshots/000001.json" || list[1].Key != "snapshots/000002.json" {
		t.Fatalf("unexpected list %+v", list)
	}

	if ok, err := s.Delete(ctx, "snapshots/000001.json"); err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if _, _, err := s.Get(ctx, "snapshots/000001.json"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestIsNotFound(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{&types.NoSuchKey{}, true},
		{fmt.Errorf("wrapped: %w", &types.NotFound{}), true},
		{errors.New("operation error S3: HeadObject, https response error StatusCode: 404"), true},
		{errors.New("access denied"), false},
	}
	for _, tc := range cases {
		if got := isNotFound(tc.err); got != tc.want {
			t.Fatalf("isNotFound(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestDecodeChunked(t *testing.T) {
	body, ok := decodeChunked([]byte("5\r\nhello\r\n0\r\nx-amz-checksum-crc32:abc\r\n\r\n"))
	if !ok || string(body) != "hello" {
		t.Fatalf("unexpected decode %q %v", body, ok)
	}
	if _, ok := decodeChunked([]byte("plain body")); ok {
		t.Fatalf("plain body must not decode")
	}
}
