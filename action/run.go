package action

import (
	"strings"

	"dockdash/api"
)

// EnvVar is one KEY=VALUE pair of the run form.
type EnvVar struct {
	Key   string
	Value string
}

// RunRequest mirrors the run-container form.
type RunRequest struct {
	Image string
	Tag   string
	Name  string
	Env   []EnvVar

	ContainerPort string
	HostPort      string
	Protocol      string

	VolumeName   string
	VolumeTarget string
	VolumeMode   string
}

// BuildRunConfig converts the form into the backend's run config. The port
// mapping is only set when container port, host port and protocol are all
// present; likewise the volume needs name, target and mode.
func BuildRunConfig(req RunRequest, defaultTag string) api.RunConfig {
	tag := strings.TrimSpace(req.Tag)
	if tag == "" {
		tag = defaultTag
	}
	cfg := api.RunConfig{
		Image: strings.TrimSpace(req.Image) + ":" + tag,
		Name:  strings.TrimSpace(req.Name),
	}
	for _, env := range req.Env {
		key := strings.TrimSpace(env.Key)
		if key == "" {
			continue
		}
		cfg.Environment = append(cfg.Environment, key+"="+env.Value)
	}

	containerPort := strings.TrimSpace(req.ContainerPort)
	hostPort := strings.TrimSpace(req.HostPort)
	protocol := strings.ToLower(strings.TrimSpace(req.Protocol))
	if containerPort != "" && hostPort != "" && protocol != "" {
		cfg.Ports = map[string]string{containerPort + "/" + protocol: hostPort}
	}

	volume := strings.TrimSpace(req.VolumeName)
	target := strings.TrimSpace(req.VolumeTarget)
	mode := strings.TrimSpace(req.VolumeMode)
	if volume != "" && target != "" && mode != "" {
		cfg.Volumes = map[string]api.VolumeBinding{volume: {Bind: target, Mode: mode}}
	}
	return cfg
}
