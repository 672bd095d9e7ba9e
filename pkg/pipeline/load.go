package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/matzehuels/stemma/pkg/cache"
	errs "github.com/matzehuels/stemma/pkg/errors"
	"github.com/matzehuels/stemma/pkg/graph"
	"github.com/matzehuels/stemma/pkg/tree"
)

// MaxSourceBytes caps fetched record documents.
const MaxSourceBytes = 64 << 20

var maxSourceBytes int64 = MaxSourceBytes

var httpClient = &http.Client{Timeout: 30 * time.Second}

// Decode parses a record document and validates every key.
func Decode(data []byte) (graph.Records, error) {
	recs, err := graph.ReadRecords(bytes.NewReader(data))
	if err != nil {
		return graph.Records{}, errs.Wrap(errs.ErrCodeInvalidRecords, err, "decode records")
	}
	if err := Validate(recs); err != nil {
		return graph.Records{}, err
	}
	return recs, nil
}

// Validate checks record keys.
func Validate(r graph.Records) error {
	for _, ind := range r.Individuals {
		if err := errs.ValidateKey("individual", ind.ID); err != nil {
			return err
		}
	}
	for _, u := range r.Unions {
		if err := errs.ValidateKey("union", u.ID); err != nil {
			return err
		}
	}
	return nil
}

// BuildTree converts records to a tree, mapping structural failures to
// error codes.
func BuildTree(r graph.Records) (*tree.Tree, []tree.Warning, error) {
	t, warnings, err := r.ToTree()
	if err != nil {
		return nil, nil, errs.Wrap(errs.ErrCodeInvalidRecords, err, "build tree")
	}
	if err := t.CheckAcyclic(); err != nil {
		return nil, nil, errs.Wrap(errs.ErrCodeCycle, err, "build tree")
	}
	return t, warnings, nil
}

// readSource returns the raw document for a path or URL.
func readSource(ctx context.Context, source string) ([]byte, error) {
	if errs.IsURL(source) {
		return fetch(ctx, source)
	}
	data, err := os.ReadFile(source)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errs.Wrap(errs.ErrCodeNotFound, err, "read %s", source)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeSource, err, "read %s", source)
	}
	return data, nil
}

func fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := cache.DefaultBackoff.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := httpClient.Do(req)
		if err != nil {
			return cache.Transient("%v", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return errs.New(errs.ErrCodeNotFound, "%s: not found", url)
		case resp.StatusCode >= 500:
			return cache.Transient("%s: %s", url, resp.Status)
		case resp.StatusCode != http.StatusOK:
			return errs.New(errs.ErrCodeInvalidInput, "%s: %s", url, resp.Status)
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, maxSourceBytes+1))
		if err != nil {
			return cache.Transient("%v", err)
		}
		if int64(len(body)) > maxSourceBytes {
			return errs.New(errs.ErrCodeInvalidInput, "%s: source exceeds %d bytes", url, maxSourceBytes)
		}
		return nil
	})
	switch {
	case err == nil:
		return body, nil
	case errors.Is(err, context.DeadlineExceeded):
		return nil, errs.Wrap(errs.ErrCodeTimeout, err, "fetch %s", url)
	case errors.Is(err, cache.ErrNetwork):
		return nil, errs.Wrap(errs.ErrCodeNetwork, err, "fetch %s", url)
	default:
		return nil, err
	}
}
