package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, st := range Statuses() {
		got, err := ParseStatus(string(st))
		require.NoError(t, err)
		assert.Equal(t, st, got)
	}

	_, err := ParseStatus("Terminado")
	assert.Error(t, err)
	_, err = ParseStatus("finalizado")
	assert.Error(t, err, "labels are case sensitive")
}

func TestParsePriority(t *testing.T) {
	got, err := ParsePriority("Crítica")
	require.NoError(t, err)
	assert.Equal(t, PriorityCritical, got)

	_, err = ParsePriority("Urgente")
	assert.Error(t, err)
}

func TestStatusClosed(t *testing.T) {
	assert.True(t, StatusFinished.Closed())
	assert.True(t, StatusCanceled.Closed())
	assert.False(t, StatusQuote.Closed())
	assert.False(t, StatusInProgress.Closed())
}

func TestWorkPatchEmpty(t *testing.T) {
	assert.True(t, WorkPatch{}.Empty())
	st := StatusInProgress
	assert.False(t, WorkPatch{Status: &st}.Empty())
}
