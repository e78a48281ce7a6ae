package services

import "errors"

var (
	ErrProjectNotFound    = errors.New("project not found")
	ErrInvalidRequest     = errors.New("invalid request body")
	ErrMasterDataNotFound = errors.New("master data file not found")
)
