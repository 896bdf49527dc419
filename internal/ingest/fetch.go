package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog/log"
)

// FetchDataset downloads a dataset to a temp file and returns its path.
// The caller removes the file when done.
func FetchDataset(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("dataset download failed: %s", resp.Status)
	}

	tmp, err := os.CreateTemp("", "dataset-*.json")
	if err != nil {
		return "", err
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}

	log.Debug().Str("url", url).Str("file", tmp.Name()).Msg("Downloaded dataset")
	return tmp.Name(), nil
}
