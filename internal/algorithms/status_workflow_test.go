package algorithms

import (
	"testing"
	"time"

	"carpinteria_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsFor_AllStatuses(t *testing.T) {
	cases := []struct {
		status     models.QuoteStatus
		percentage int
		stage      string
	}{
		{models.QuoteStatusPending, 10, "Solicitud recibida"},
		{models.QuoteStatusInProgress, 30, "En revisión"},
		{models.QuoteStatusAccepted, 50, "Presupuesto aprobado"},
		{models.QuoteStatusCompleted, 100, "Proyecto completado"},
		{models.QuoteStatusRejected, 0, "Solicitud rechazada"},
	}

	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			d, ok := DefaultsFor(tc.status)
			require.True(t, ok)
			assert.Equal(t, tc.percentage, d.Percentage)
			assert.Equal(t, tc.stage, d.Stage)
			assert.NotEmpty(t, d.ClientMessage)
			assert.NotEmpty(t, d.NotificationTitle)
		})
	}

	_, ok := DefaultsFor("archivado")
	assert.False(t, ok)
}

func TestDefaultsFor_ReturnsCopy(t *testing.T) {
	d, _ := DefaultsFor(models.QuoteStatusAccepted)
	d.Percentage = 99
	d.ClientMessage = "changed"

	again, _ := DefaultsFor(models.QuoteStatusAccepted)
	assert.Equal(t, 50, again.Percentage)
	assert.Contains(t, again.ClientMessage, "¡Buenas noticias!")
}

func TestPlanTransition_PendingToAccepted(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	plan, err := PlanTransition(TransitionInput{
		Current: models.QuoteStatusPending,
		Next:    models.QuoteStatusAccepted,
		Now:     now,
	})
	require.NoError(t, err)

	assert.Equal(t, models.QuoteStatusAccepted, plan.Status)
	assert.Equal(t, 50, plan.Percentage)
	assert.Equal(t, "Presupuesto aprobado", plan.Stage)
	assert.True(t, plan.IsAutomatic)
	assert.Contains(t, plan.MessageText, "¡Buenas noticias!")
	assert.Equal(t, "¡Presupuesto aprobado!", plan.Notification.NotificationTitle)
	assert.Equal(t, now, plan.UpdatedAt)
	assert.Nil(t, plan.CompletedAt)
}

func TestPlanTransition_ExplicitValues(t *testing.T) {
	progress := 75

	plan, err := PlanTransition(TransitionInput{
		Current:          models.QuoteStatusAccepted,
		Next:             models.QuoteStatusInProgress,
		ExplicitMessage:  "  Ya tenemos la madera, empezamos el lunes.  ",
		ExplicitProgress: &progress,
	})
	require.NoError(t, err)

	assert.Equal(t, 75, plan.Percentage)
	assert.Equal(t, "En revisión", plan.Stage, "stage label always comes from the table")
	assert.Equal(t, "Ya tenemos la madera, empezamos el lunes.", plan.MessageText)
	assert.False(t, plan.IsAutomatic)
	assert.False(t, plan.UpdatedAt.IsZero())
}

func TestPlanTransition_BlankMessageFallsBackToCanned(t *testing.T) {
	plan, err := PlanTransition(TransitionInput{
		Current:         models.QuoteStatusPending,
		Next:            models.QuoteStatusRejected,
		ExplicitMessage: "   ",
	})
	require.NoError(t, err)

	d, _ := DefaultsFor(models.QuoteStatusRejected)
	assert.Equal(t, d.ClientMessage, plan.MessageText)
	assert.True(t, plan.IsAutomatic)
	assert.Equal(t, 0, plan.Percentage)
}

func TestPlanTransition_CompletedSetsTimestamp(t *testing.T) {
	now := time.Now()
	for _, from := range models.QuoteStatuses {
		plan, err := PlanTransition(TransitionInput{Current: from, Next: models.QuoteStatusCompleted, Now: now})
		require.NoError(t, err)
		require.NotNil(t, plan.CompletedAt, "from %s", from)
		assert.Equal(t, now, *plan.CompletedAt)
		assert.Equal(t, 100, plan.Percentage)
	}
}

func TestPlanTransition_Errors(t *testing.T) {
	_, err := PlanTransition(TransitionInput{Current: models.QuoteStatusPending, Next: "archivado"})
	assert.ErrorIs(t, err, ErrUnknownStatus)

	tooMuch := 101
	_, err = PlanTransition(TransitionInput{Current: models.QuoteStatusPending, Next: models.QuoteStatusAccepted, ExplicitProgress: &tooMuch})
	assert.ErrorIs(t, err, ErrInvalidPercentage)

	negative := -1
	_, err = PlanTransition(TransitionInput{Current: models.QuoteStatusPending, Next: models.QuoteStatusAccepted, ExplicitProgress: &negative})
	assert.ErrorIs(t, err, ErrInvalidPercentage)
}

func TestPlanTransition_OpenByDefault(t *testing.T) {
	// без строгого режима разрешен любой переход, в том числе из терминального
	for _, from := range models.QuoteStatuses {
		for _, to := range models.QuoteStatuses {
			_, err := PlanTransition(TransitionInput{Current: from, Next: to})
			assert.NoError(t, err, "%s -> %s", from, to)
		}
	}
}

func TestPlanTransition_Strict(t *testing.T) {
	_, err := PlanTransition(TransitionInput{
		Current: models.QuoteStatusCompleted,
		Next:    models.QuoteStatusPending,
		Strict:  true,
	})
	assert.ErrorIs(t, err, ErrTransitionNotAllowed)

	_, err = PlanTransition(TransitionInput{
		Current: models.QuoteStatusAccepted,
		Next:    models.QuoteStatusCompleted,
		Strict:  true,
	})
	assert.NoError(t, err)
}

func TestAllowedTransitions_ReturnsCopy(t *testing.T) {
	next := AllowedTransitions(models.QuoteStatusPending)
	require.NotEmpty(t, next)
	next[0] = models.QuoteStatusCompleted

	assert.False(t, CanTransition(models.QuoteStatusPending, models.QuoteStatusCompleted))
	assert.Empty(t, AllowedTransitions(models.QuoteStatusCompleted))
}
