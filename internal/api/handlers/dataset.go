package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/demandcast/backend/internal/dataset"
)

// Uploads larger than this are rejected before parsing.
const maxUploadBytes = 64 << 20 // 64 MiB

// readDataset extracts the uploaded CSV dataset from a request. Both a
// multipart form with a "file" field and a raw CSV body are accepted.
func readDataset(r *http.Request) (*dataset.Dataset, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxUploadBytes)

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return nil, fmt.Errorf("parse upload: %w", err)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("missing file field: %w", err)
		}
		defer file.Close()
		return dataset.LoadCSV(file)
	}

	return dataset.LoadCSV(r.Body)
}

// filterFromQuery builds the optional row filter from query parameters.
func filterFromQuery(r *http.Request) dataset.Filter {
	filter := dataset.Filter{}
	for _, col := range []string{"item_code", "season"} {
		if v := r.URL.Query().Get(col); v != "" {
			filter[col] = v
		}
	}
	if len(filter) == 0 {
		return nil
	}
	return filter
}
