package domain

import (
	"fmt"
	"strings"
)

// CameraPosition identifies one of the robot's body cameras.
type CameraPosition string

const (
	CameraFrontLeft  CameraPosition = "frontleft"
	CameraFrontRight CameraPosition = "frontright"
	CameraLeft       CameraPosition = "left"
	CameraRight      CameraPosition = "right"
	CameraBack       CameraPosition = "back"
)

// CameraAll is accepted by callers that want every position. It is not a position itself.
const CameraAll = "all"

// cameraAngles holds the rotation, in degrees, that de-skews imagery from each camera.
var cameraAngles = map[CameraPosition]float64{
	CameraBack:       0,
	CameraFrontLeft:  -78,
	CameraFrontRight: -102,
	CameraLeft:       0,
	CameraRight:      180,
}

// AllCameraPositions returns every position in canonical order.
func AllCameraPositions() []CameraPosition {
	return []CameraPosition{CameraBack, CameraFrontLeft, CameraFrontRight, CameraLeft, CameraRight}
}

// ParseCameraPosition resolves a position name. Unknown names are rejected.
func ParseCameraPosition(name string) (CameraPosition, error) {
	p := CameraPosition(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := cameraAngles[p]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCamera, name)
	}
	return p, nil
}

// Valid reports whether p belongs to the closed set.
func (p CameraPosition) Valid() bool {
	_, ok := cameraAngles[p]
	return ok
}

// Angle returns the correction angle in degrees. Positive angles rotate counter-clockwise.
func (p CameraPosition) Angle() float64 {
	return cameraAngles[p]
}

func (p CameraPosition) String() string { return string(p) }

// Modality tags the kind of stream a source produces.
type Modality string

const (
	ModalityDepth              Modality = "depth"
	ModalityDepthInVisualFrame Modality = "depth_in_visual_frame"
	ModalityFisheye            Modality = "fisheye_image"
)

// AllModalities returns the modalities in canonical order.
func AllModalities() []Modality {
	return []Modality{ModalityDepth, ModalityDepthInVisualFrame, ModalityFisheye}
}

// IsDepth reports whether frames of this modality carry 16-bit range data.
func (m Modality) IsDepth() bool {
	return m == ModalityDepth || m == ModalityDepthInVisualFrame
}

// CameraSource is a named sensor stream: one position paired with one modality.
type CameraSource struct {
	Position CameraPosition
	Modality Modality
}

// Name returns the identifier used by the image service, e.g. "back_fisheye_image".
func (s CameraSource) Name() string {
	return string(s.Position) + "_" + string(s.Modality)
}

func (s CameraSource) String() string { return s.Name() }

// AllCameraSources enumerates every position and modality pair.
func AllCameraSources() []CameraSource {
	positions := AllCameraPositions()
	modalities := AllModalities()
	out := make([]CameraSource, 0, len(positions)*len(modalities))
	for _, p := range positions {
		for _, m := range modalities {
			out = append(out, CameraSource{Position: p, Modality: m})
		}
	}
	return out
}

var sourcesByName = func() map[string]CameraSource {
	idx := make(map[string]CameraSource)
	for _, s := range AllCameraSources() {
		if _, dup := idx[s.Name()]; dup {
			panic("duplicate camera source name " + s.Name())
		}
		idx[s.Name()] = s
	}
	return idx
}()

// ParseCameraSource resolves a source by its exact name.
func ParseCameraSource(name string) (CameraSource, error) {
	s, ok := sourcesByName[name]
	if !ok {
		return CameraSource{}, fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}
	return s, nil
}

// BlendPair returns the depth-in-visual-frame and fisheye sources used to fuse a position.
func BlendPair(p CameraPosition) (depth, visual CameraSource, err error) {
	if !p.Valid() {
		return CameraSource{}, CameraSource{}, fmt.Errorf("%w: %q", ErrUnknownCamera, p)
	}
	return CameraSource{Position: p, Modality: ModalityDepthInVisualFrame},
		CameraSource{Position: p, Modality: ModalityFisheye}, nil
}

// ParseCameras expands a list of names into positions. "all" selects every position.
func ParseCameras(names []string) ([]CameraPosition, error) {
	var out []CameraPosition
	seen := make(map[CameraPosition]bool)
	for _, n := range names {
		if strings.EqualFold(strings.TrimSpace(n), CameraAll) {
			return AllCameraPositions(), nil
		}
		p, err := ParseCameraPosition(n)
		if err != nil {
			return nil, err
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out, nil
}
