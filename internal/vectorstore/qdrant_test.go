package vectorstore

import (
	"context"
	"testing"

	"github.com/qdrant/go-client/qdrant"
)

func TestGRPCEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		urlStr   string
		wantErr  bool
		wantHost string
		wantPort int
	}{
		{name: "default port", urlStr: "http://localhost:6333", wantHost: "localhost", wantPort: 6334},
		{name: "custom port", urlStr: "http://qdrant:9000", wantHost: "qdrant", wantPort: 9001},
		{name: "no port", urlStr: "http://localhost", wantHost: "localhost", wantPort: 6334},
		{name: "no hostname", urlStr: "http://:6333", wantHost: "localhost", wantPort: 6334},
		{name: "invalid URL", urlStr: "://invalid", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, port, err := grpcEndpoint(tt.urlStr)
			if (err != nil) != tt.wantErr {
				t.Fatalf("grpcEndpoint() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if host != tt.wantHost {
				t.Errorf("host = %q, want %q", host, tt.wantHost)
			}
			if port != tt.wantPort {
				t.Errorf("port = %d, want %d", port, tt.wantPort)
			}
		})
	}
}

func TestNewQdrantStore_InvalidURL(t *testing.T) {
	if _, err := NewQdrantStore("://invalid"); err == nil {
		t.Error("NewQdrantStore() with invalid URL should return error")
	}
}

func TestQdrantStore_EarlyReturns(t *testing.T) {
	// None of these reach the client.
	store := &QdrantStore{}
	ctx := context.Background()

	if err := store.Upsert(ctx, "taxonomy", nil); err != nil {
		t.Errorf("Upsert() with no points error = %v", err)
	}
	if err := store.Delete(ctx, "taxonomy", nil); err != nil {
		t.Errorf("Delete() with no ids error = %v", err)
	}
	for _, k := range []int{0, -1} {
		if _, err := store.Search(ctx, "taxonomy", []float32{1, 2}, k); err == nil {
			t.Errorf("Search() with k=%d should return error", k)
		}
	}
	if err := store.Close(); err != nil {
		t.Errorf("Close() without client error = %v", err)
	}
}

func TestConvertPayloadToMap(t *testing.T) {
	if result := convertPayloadToMap(nil); result == nil || len(result) != 0 {
		t.Errorf("convertPayloadToMap(nil) = %v, want empty map", result)
	}

	payload := qdrant.NewValueMap(map[string]any{
		"category":    "Documents",
		"taxonomy_id": 7,
		"frequency":   1.5,
		"active":      true,
	})
	got := convertPayloadToMap(payload)

	if got["category"] != "Documents" {
		t.Errorf("category = %v", got["category"])
	}
	if got["taxonomy_id"] != int64(7) {
		t.Errorf("taxonomy_id = %v (%T), want int64 7", got["taxonomy_id"], got["taxonomy_id"])
	}
	if got["frequency"] != 1.5 {
		t.Errorf("frequency = %v", got["frequency"])
	}
	if got["active"] != true {
		t.Errorf("active = %v", got["active"])
	}
}

func TestVectorSizeOf(t *testing.T) {
	if got := vectorSizeOf(nil); got != 0 {
		t.Errorf("vectorSizeOf(nil) = %d, want 0", got)
	}
	info := &qdrant.CollectionInfo{
		Config: &qdrant.CollectionConfig{
			Params: &qdrant.CollectionParams{
				VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{Size: 768, Distance: qdrant.Distance_Cosine}),
			},
		},
	}
	if got := vectorSizeOf(info); got != 768 {
		t.Errorf("vectorSizeOf() = %d, want 768", got)
	}
}
