package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogDoc = `{"mobiles": [
	{"id": 1, "name": "Nova X", "brand": "Nova", "price": 5000, "image": "nova-x.jpg", "ram": "6GB", "rom": "128GB"},
	{"id": 2, "name": "Nova X", "brand": "Nova", "price": 20000, "image": "nova-x.jpg", "ram": "12GB", "rom": "256GB"}
]}`

func Test_HTTPSource_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(catalogDoc))
	}))
	defer server.Close()

	source := NewHTTPSource(server.URL, 5*time.Second)
	products, err := source.Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Nova X", products[0].Name)
	assert.Equal(t, 5000.0, products[0].Price)
}

func Test_HTTPSource_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	source := NewHTTPSource(server.URL, 5*time.Second)
	_, err := source.Fetch(context.Background())

	assert.Error(t, err)
}

func Test_HTTPSource_MalformedDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	source := NewHTTPSource(server.URL, 5*time.Second)
	_, err := source.Fetch(context.Background())

	assert.Error(t, err)
}

func Test_FileSource_Fetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mobiles.json")
	require.NoError(t, os.WriteFile(path, []byte(catalogDoc), 0o644))

	source := NewFileSource(path)
	products, err := source.Fetch(context.Background())

	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func Test_FileSource_MissingFile(t *testing.T) {
	source := NewFileSource(filepath.Join(t.TempDir(), "absent.json"))
	_, err := source.Fetch(context.Background())
	assert.Error(t, err)
}
