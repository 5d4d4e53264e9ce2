// Package repository provides typed access to the remote document
// collections, one repository per collection.
package repository

import (
	"encoding/json"
	"fmt"

	"github.com/Xensen008/Pixify/internal/backend"
)

func decodeDocument[T any](raw json.RawMessage) (*T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return &v, nil
}

func decodeList[T any](list *backend.DocumentList) ([]T, error) {
	out := make([]T, 0, len(list.Documents))
	for _, raw := range list.Documents {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		out = append(out, v)
	}
	return out, nil
}
