package coremodel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taoyao-code/btwattch2-collector/internal/protocol/btwattch2"
)

func TestSample_FieldsAndTags(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := NewSample("AA:BB:CC:DD:EE:FF", btwattch2.Reading{Voltage: 100.2, Current: 0.5, Wattage: 48.1}, at)

	assert.Equal(t, at, s.Time)
	assert.Equal(t, map[string]string{"address": "AA:BB:CC:DD:EE:FF"}, s.Tags())
	assert.Equal(t, map[string]any{"voltage": 100.2, "ampere": 0.5, "wattage": 48.1}, s.Fields())
}
