// Package api holds the payloads exchanged with the Docker management backend
// and a small REST client for its action endpoints.
package api

import (
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Port is one port mapping of a container.
type Port struct {
	IP          string `json:"IP,omitempty"`
	PrivatePort int    `json:"PrivatePort"`
	PublicPort  int    `json:"PublicPort,omitempty"`
	Type        string `json:"Type"`
}

// Container is one entry of the containerlist snapshot.
type Container struct {
	ID     string   `json:"ID"`
	Names  []string `json:"Names"`
	State  string   `json:"State"`
	Status string   `json:"Status"`
	Image  string   `json:"Image"`
	Ports  []Port   `json:"Ports"`
}

// EntityID implements reconcile.Entity.
func (c Container) EntityID() string { return c.ID }

// Attr implements reconcile.Entity for the tracked container attributes.
func (c Container) Attr(name string) any {
	switch name {
	case "Names":
		return c.Names
	case "ID":
		return c.ID
	case "State":
		return c.State
	case "Status":
		return c.Status
	case "Image":
		return c.Image
	case "Ports":
		return c.Ports
	}
	return nil
}

// DisplayName is the first name without the leading slash Docker adds.
func (c Container) DisplayName() string {
	if len(c.Names) == 0 {
		return ""
	}
	return strings.TrimPrefix(c.Names[0], "/")
}

// Image is one entry of the imagelist snapshot.
type Image struct {
	ID            string `json:"ID"`
	Name          string `json:"Name"`
	Tag           string `json:"Tag"`
	Created       int64  `json:"Created"`
	NumContainers int    `json:"NumContainers"`
	Size          int64  `json:"Size"`
}

func (i Image) EntityID() string { return i.ID }

func (i Image) Attr(name string) any {
	switch name {
	case "Name":
		return i.Name
	case "Tag":
		return i.Tag
	case "Created":
		return i.Created
	case "NumContainers":
		return i.NumContainers
	case "Size":
		return i.Size
	}
	return nil
}

// ContainerStats is one per-container metrics delta. A non-empty Message marks
// the container as gone.
type ContainerStats struct {
	ID            string  `json:"ID"`
	Name          string  `json:"Name,omitempty"`
	CpuPercent    float64 `json:"CpuPercent"`
	MemoryUsage   float64 `json:"MemoryUsage"`
	MemoryLimit   float64 `json:"MemoryLimit"`
	MemoryPercent float64 `json:"MemoryPercent"`
	Message       string  `json:"Message,omitempty"`
}

func (s ContainerStats) EntityID() string { return s.ID }

func (s ContainerStats) Attr(name string) any {
	switch name {
	case "Name":
		return s.Name
	case "CpuPercent":
		return s.CpuPercent
	case "MemoryUsage":
		return s.MemoryUsage
	case "MemoryLimit":
		return s.MemoryLimit
	case "MemoryPercent":
		return s.MemoryPercent
	}
	return nil
}

// Deleted reports whether this delta is a deletion marker.
func (s ContainerStats) Deleted() bool {
	return s.Message != ""
}

// ServerMessage is a notification pushed by the backend.
type ServerMessage struct {
	Category string `json:"category"`
	Text     string `json:"text"`
	TimeSent int64  `json:"timeSent"`
}

// ComposeFiles is the composefiles stream payload.
type ComposeFiles struct {
	Files []string `json:"files"`
}

// VolumeBinding mounts a named volume into a container.
type VolumeBinding struct {
	Bind string `json:"bind"`
	Mode string `json:"mode"`
}

// RunConfig is the body of a run-container request.
type RunConfig struct {
	Image       string                   `json:"image"`
	Name        string                   `json:"containerName,omitempty"`
	Environment []string                 `json:"environment,omitempty"`
	Ports       map[string]string        `json:"ports,omitempty"`
	Volumes     map[string]VolumeBinding `json:"volumes,omitempty"`
}
