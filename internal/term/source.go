package term

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// DefaultFetchTimeout bounds a remote dataset download.
const DefaultFetchTimeout = 30 * time.Second

// ErrDatasetNotFound indicates the dataset file or URL does not exist.
var ErrDatasetNotFound = errors.New("dataset not found")

// ErrInvalidDataset indicates the dataset could not be decoded.
var ErrInvalidDataset = errors.New("invalid dataset")

// Load reads the dataset from a local path or an http(s) URL.
func Load(ctx context.Context, location string) ([]Record, error) {
	if isURL(location) {
		return Fetch(ctx, http.DefaultClient, location)
	}
	return ReadFile(location)
}

// ReadFile reads records from a JSON array file, or from JSONL when the
// file name ends in .jsonl.
func ReadFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, path)
		}
		return nil, fmt.Errorf("reading dataset: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".jsonl") {
		return ParseJSONL(bytes.NewReader(data))
	}
	return Parse(data)
}

// Fetch downloads the dataset from url and decodes it as a JSON array.
func Fetch(ctx context.Context, client *http.Client, url string) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating dataset request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, url)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetching dataset: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading dataset body: %w", err)
	}
	return Parse(data)
}

// Parse decodes a JSON array of records.
func Parse(data []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}
	return records, nil
}

// ParseJSONL decodes one record per line, skipping blank lines.
func ParseJSONL(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	var records []Record
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidDataset, lineNum, err)
		}
		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}

	return records, nil
}

func isURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}
