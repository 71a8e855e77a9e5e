package memory

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"ideospace/internal/archive/store"
)

func TestStorePutGetListDelete(t *testing.T) {
	ctx := context.Background()
	s := New()
	if s.Driver() != store.DriverMemory {
		t.Fatalf("driver = %s", s.Driver())
	}
	md := map[string]string{"revision": "1"}
	info, err := s.Put(ctx, "snapshots/000001.json", strings.NewReader(`{"revision":1}`), store.PutOptions{ContentType: "application/json", Metadata: md})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 14 || info.ContentType != "application/json" {
		t.Fatalf("unexpected info %+v", info)
	}
	md["revision"] = "mutated"

	if _, err := s.Put(ctx, "snapshots/000001.json", strings.NewReader("x"), store.PutOptions{}); !errors.Is(err, store.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}

	got, rc, err := s.Get(ctx, "snapshots/000001.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != `{"revision":1}` || got.Metadata["revision"] != "1" {
		t.Fatalf("unexpected object %q %+v", body, got)
	}

	if _, err := s.Put(ctx, "other/a", strings.NewReader("a"), store.PutOptions{}); err != nil {
		t.Fatalf("put other: %v", err)
	}
	if _, err := s.Put(ctx, "snapshots/000000.json", strings.NewReader("0"), store.PutOptions{}); err != nil {
		t.Fatalf("put zero: %v", err)
	}
	list, err := s.List(ctx, "snapshots/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Key != "snapshots/000000.json" || list[1].Key != "snapshots/000001.json" {
		t.Fatalf("unexpected list %+v", list)
	}

	ok, err := s.Delete(ctx, "snapshots/000001.json")
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	ok, err = s.Delete(ctx, "snapshots/000001.json")
	if err != nil || ok {
		t.Fatalf("second delete: %v %v", ok, err)
	}
	if _, _, err := s.Get(ctx, "snapshots/000001.json"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("read failed") }

func TestStorePutReadError(t *testing.T) {
	s := New()
	if _, err := s.Put(context.Background(), "k", errReader{}, store.PutOptions{}); err == nil {
		t.Fatalf("expected read error")
	}
	list, _ := s.List(context.Background(), "")
	if len(list) != 0 {
		t.Fatalf("failed put must not store anything: %+v", list)
	}
}
