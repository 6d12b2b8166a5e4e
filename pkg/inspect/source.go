// Package inspect defines where instance snapshots come from. Collecting
// facts from the operating system is left to external inspectors; this
// package reads what they produced.
package inspect

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"instance-doctor/pkg/model"
)

// Source yields the current snapshots of every instance on a host.
type Source interface {
	Snapshots(ctx context.Context) ([]model.InstanceSnapshot, error)
}

// Batch is the document an inspector writes: the host it ran on and the
// snapshots it collected.
type Batch struct {
	Host      string                   `json:"host" yaml:"host"`
	Instances []model.InstanceSnapshot `json:"instances" yaml:"instances"`
}

// FileSource reads a YAML or JSON snapshot document from disk on every call.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource { return &FileSource{Path: path} }

func (f *FileSource) Snapshots(ctx context.Context) ([]model.InstanceSnapshot, error) {
	b, err := f.Batch(ctx)
	if err != nil {
		return nil, err
	}
	return b.Instances, nil
}

// Batch reads the whole document including the host name.
func (f *FileSource) Batch(ctx context.Context) (Batch, error) {
	if err := ctx.Err(); err != nil {
		return Batch{}, err
	}
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		return Batch{}, fmt.Errorf("read snapshots: %w", err)
	}
	b, err := Decode(raw)
	if err != nil {
		return Batch{}, fmt.Errorf("%s: %w", f.Path, err)
	}
	return b, nil
}

// Decode accepts either a Batch document or a bare list of snapshots.
// JSON input is valid YAML and goes through the same path.
func Decode(raw []byte) (Batch, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Batch{}, nil
	}
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return Batch{}, fmt.Errorf("decode snapshots: %w", err)
	}
	var b Batch
	if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
		if err := node.Decode(&b.Instances); err != nil {
			return Batch{}, fmt.Errorf("decode snapshots: %w", err)
		}
		return b, nil
	}
	if err := node.Decode(&b); err != nil {
		return Batch{}, fmt.Errorf("decode snapshots: %w", err)
	}
	return b, nil
}

// Static is a fixed in-memory Source.
type Static []model.InstanceSnapshot

func (s Static) Snapshots(context.Context) ([]model.InstanceSnapshot, error) {
	out := make([]model.InstanceSnapshot, len(s))
	copy(out, s)
	return out, nil
}
