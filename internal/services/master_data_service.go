package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// MasterDataService serves the static reference document as stored.
type MasterDataService struct {
	path string
}

func NewMasterDataService(path string) *MasterDataService {
	return &MasterDataService{path: path}
}

// GetMasterData returns the raw document. Its bytes are not re-encoded so
// key order and formatting survive.
func (s *MasterDataService) GetMasterData() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrMasterDataNotFound
		}
		return nil, fmt.Errorf("failed to read master data: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("master data is not valid JSON")
	}
	return data, nil
}
