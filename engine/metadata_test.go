package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNFTMetadataDataURIRoundTrip(t *testing.T) {
	uri, err := DefaultOptions().MintMetadata.DataURI()
	if err != nil {
		t.Fatal(err)
	}
	meta, err := NewMetadataFetcher("").Fetch(context.Background(), uri)
	if err != nil {
		t.Fatal(err)
	}
	if meta["name"] != "Serum NFT" || meta["description"] != "Issued by Adam." {
		t.Errorf("got %v", meta)
	}
}

func TestMetadataFetcherPlainDataURI(t *testing.T) {
	meta, err := NewMetadataFetcher("").Fetch(context.Background(), `data:application/json,{"name":"a%20b"}`)
	if err != nil {
		t.Fatal(err)
	}
	if meta["name"] != "a b" {
		t.Errorf("got %v", meta)
	}
}

func TestMetadataFetcherIPFS(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ipfs/QmHash/1.json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"Serum #1","image":"ipfs://QmImage"}`))
	}))
	defer srv.Close()

	f := NewMetadataFetcher(srv.URL + "/ipfs")
	if got := f.Resolve("ipfs://ipfs/QmHash/1.json"); got != srv.URL+"/ipfs/QmHash/1.json" {
		t.Errorf("Resolve = %s", got)
	}
	meta, err := f.Fetch(context.Background(), "ipfs://QmHash/1.json")
	if err != nil {
		t.Fatal(err)
	}
	if meta["name"] != "Serum #1" {
		t.Errorf("got %v", meta)
	}
	if _, err := f.Fetch(context.Background(), "ipfs://QmMissing"); err == nil {
		t.Error("expected error for 404")
	}
	if _, err := f.Fetch(context.Background(), "ftp://example.com/x.json"); err == nil {
		t.Error("expected error for unsupported scheme")
	}
}
