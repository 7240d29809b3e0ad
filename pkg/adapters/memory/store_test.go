package memory_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/aretw0/strider/pkg/adapters/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SaveCopies(t *testing.T) {
	store := memory.NewStore()
	img := image.NewGray(image.Rect(0, 0, 2, 1))
	img.SetGray(0, 0, color.Gray{Y: 10})

	require.NoError(t, store.Save(context.Background(), "out/a.png", img))
	img.SetGray(0, 0, color.Gray{Y: 99})

	got, ok := store.Load("out/a.png")
	require.True(t, ok)
	r, _, _, _ := got.At(0, 0).RGBA()
	assert.Equal(t, uint32(10)*0x101, r)
	assert.Equal(t, []string{"out/a.png"}, store.List())
}

func TestMemoryStore_Fail(t *testing.T) {
	store := memory.NewStore()
	disk := errors.New("disk full")
	store.FailWith(disk)

	err := store.Save(context.Background(), "x.png", image.NewGray(image.Rect(0, 0, 1, 1)))
	assert.ErrorIs(t, err, disk)
	assert.Empty(t, store.List())

	assert.Error(t, memory.NewStore().Save(context.Background(), "", image.NewGray(image.Rect(0, 0, 1, 1))))
}
