// Package config loads mission files for the strider CLI.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/aretw0/strider"
	"github.com/aretw0/strider/pkg/domain"
	"github.com/aretw0/strider/pkg/lease"
	"github.com/aretw0/strider/pkg/motion"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// File is the on-disk shape of a mission file.
type File struct {
	Host        string `json:"host"`
	Bridge      string `json:"bridge"`
	User        string `json:"user"`
	Redis       string `json:"redis"`
	MetricsAddr string `json:"metrics_addr"`

	Lease   lease.Config    `json:"lease"`
	Motion  motion.Config   `json:"motion"`
	Mission strider.Mission `json:"mission"`
}

// Load reads and decodes a mission file. An empty path yields the defaults.
func Load(path string) (*File, error) {
	if path == "" {
		return Parse(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes YAML mission data over the lease and motion defaults.
// Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}

	f := File{Lease: lease.DefaultConfig(), Motion: motion.DefaultConfig()}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &f,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			stringToBehaviorHook,
			stringToCamerasHook,
			stringToCameraHook,
		),
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, err
	}
	return &f, nil
}

// Resolve fills every mission field the file left empty from strider.DefaultMission.
func (f *File) Resolve() strider.Mission {
	m := f.Mission
	d := strider.DefaultMission()
	if m.Behavior == "" {
		m.Behavior = d.Behavior
	}
	if len(m.Steps) == 0 {
		m.Steps = d.Steps
	}
	if m.MoveTimeout <= 0 {
		m.MoveTimeout = d.MoveTimeout
	}
	if m.Source == "" {
		m.Source = d.Source
	}
	if len(m.Cameras) == 0 {
		m.Cameras = d.Cameras
	}
	if m.OutputDir == "" {
		m.OutputDir = d.OutputDir
	}
	if m.Prefix == "" {
		m.Prefix = d.Prefix
	}
	if m.PowerTimeout <= 0 {
		m.PowerTimeout = d.PowerTimeout
	}
	if m.StandTimeout <= 0 {
		m.StandTimeout = d.StandTimeout
	}
	return m
}

var (
	behaviorType = reflect.TypeOf(domain.Behavior(""))
	cameraType   = reflect.TypeOf(domain.CameraPosition(""))
	camerasType  = reflect.TypeOf([]domain.CameraPosition(nil))
)

func stringToBehaviorHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != behaviorType {
		return data, nil
	}
	return domain.ParseBehavior(data.(string))
}

func stringToCameraHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != cameraType {
		return data, nil
	}
	return domain.ParseCameraPosition(data.(string))
}

// stringToCamerasHook accepts "all" or a comma separated list where a list is expected.
func stringToCamerasHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != camerasType {
		return data, nil
	}
	return ParseCameras(strings.Split(data.(string), ","))
}

// ParseCameras resolves camera names. A lone "all" expands to every position.
func ParseCameras(names []string) ([]domain.CameraPosition, error) {
	if len(names) == 1 && strings.EqualFold(strings.TrimSpace(names[0]), "all") {
		return domain.AllCameraPositions(), nil
	}
	out := make([]domain.CameraPosition, 0, len(names))
	for _, name := range names {
		p, err := domain.ParseCameraPosition(name)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
