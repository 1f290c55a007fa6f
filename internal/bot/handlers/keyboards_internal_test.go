package handlers

import (
	"strings"
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
)

func TestPlantCallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		action string
		plant  string
		want   string
	}{
		{name: "short name", action: "water", plant: "Монстера", want: "plant_water_Монстера"},
		{name: "long name falls back", action: "problems", plant: strings.Repeat("Фикус", 6), want: "plant_problems_"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := plantCallback(tt.action, tt.plant)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), maxCallbackData)
		})
	}
}

func TestLargestPhoto(t *testing.T) {
	t.Parallel()

	_, ok := largestPhoto(nil)
	assert.False(t, ok)

	best, ok := largestPhoto([]models.PhotoSize{
		{FileID: "small", Width: 90, Height: 90},
		{FileID: "big", Width: 1280, Height: 960},
		{FileID: "wide", Width: 1600, Height: 100},
	})
	assert.True(t, ok)
	assert.Equal(t, "big", best.FileID)
}
