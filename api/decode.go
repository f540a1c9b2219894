package api

import (
	"bytes"
	"fmt"
)

// DecodeContainers parses a containerlist snapshot.
func DecodeContainers(data []byte) ([]Container, error) {
	var out []Container
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode containers: %w", err)
	}
	return out, nil
}

// DecodeImages parses an imagelist snapshot.
func DecodeImages(data []byte) ([]Image, error) {
	var out []Image
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode images: %w", err)
	}
	return out, nil
}

// DecodeStats parses one containermetrics delta.
func DecodeStats(data []byte) (ContainerStats, error) {
	var out ContainerStats
	if err := json.Unmarshal(data, &out); err != nil {
		return ContainerStats{}, fmt.Errorf("decode stats: %w", err)
	}
	if out.ID == "" {
		return ContainerStats{}, fmt.Errorf("decode stats: missing ID")
	}
	return out, nil
}

// DecodeMessage parses a servermessages payload.
func DecodeMessage(data []byte) (ServerMessage, error) {
	var out ServerMessage
	if err := json.Unmarshal(data, &out); err != nil {
		return ServerMessage{}, fmt.Errorf("decode message: %w", err)
	}
	return out, nil
}

// DecodeComposeFiles parses a composefiles payload. ok is false for the empty
// heartbeat the backend sends between changes.
func DecodeComposeFiles(data []byte) (files ComposeFiles, ok bool, err error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return ComposeFiles{}, false, nil
	}
	if err := json.Unmarshal(data, &files); err != nil {
		return ComposeFiles{}, false, fmt.Errorf("decode compose files: %w", err)
	}
	return files, true, nil
}
