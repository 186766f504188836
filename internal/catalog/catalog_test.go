package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botucare/clinic-backend/internal/gateway"
	"github.com/botucare/clinic-backend/pkg/logging"
)

func TestDefaultsVocabulary(t *testing.T) {
	cat := Defaults()

	assert.True(t, cat.HasDiagnosis("Cervical dystonia"))
	assert.False(t, cat.HasDiagnosis("Torticollis"))
	assert.True(t, cat.HasProduct("Botox"))
	assert.True(t, cat.HasGuidanceType("Ultrasound"))
	assert.True(t, cat.HasMuscle("1"))
	assert.False(t, cat.HasMuscle("99"))

	m, ok := cat.MuscleByID("9")
	require.True(t, ok)
	assert.Equal(t, "Masseter", m.Name)
	assert.Equal(t, "Face", m.Region)
}

func TestApplyPartialUpdateBumpsVersion(t *testing.T) {
	cat := Defaults()

	products := []string{"Botox", "Dysport", "Xeomin"}
	next := cat.Apply(Update{Products: &products})

	assert.Equal(t, cat.Version+1, next.Version)
	assert.True(t, next.HasProduct("Xeomin"))
	// Untouched lists carry over; the receiver is unchanged.
	assert.Equal(t, cat.Diagnoses, next.Diagnoses)
	assert.False(t, cat.HasProduct("Xeomin"))
}

func TestStoreSeedsDefaultsWhenEmpty(t *testing.T) {
	gw := gateway.NewMemoryGateway()
	store, err := NewStore(context.Background(), gw, logging.Default())
	require.NoError(t, err)

	cat := store.Current()
	assert.NotEmpty(t, cat.ID, "seeded catalog should carry its document id")
	assert.Equal(t, int64(1), cat.Version)

	// A second store against the same gateway loads the persisted document.
	again, err := NewStore(context.Background(), gw, logging.Default())
	require.NoError(t, err)
	assert.Equal(t, cat.ID, again.Current().ID)
}

func TestStoreApplyPersists(t *testing.T) {
	gw := gateway.NewMemoryGateway()
	store, err := NewStore(context.Background(), gw, logging.Default())
	require.NoError(t, err)

	diagnoses := []string{"Cervical dystonia", "Blepharospasm"}
	next, err := store.Apply(context.Background(), Update{Diagnoses: &diagnoses})
	require.NoError(t, err)
	assert.Equal(t, int64(2), next.Version)

	reloaded, err := NewStore(context.Background(), gw, logging.Default())
	require.NoError(t, err)
	assert.True(t, reloaded.Current().HasDiagnosis("Blepharospasm"))
	assert.Equal(t, int64(2), reloaded.Current().Version)
}
